// Package chunk splits document text into sentence-aligned chunks.
package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"learning_server/core/domain"
)

// DefaultMaxChunkSize is the chunk size, in characters, used across the service.
const DefaultMaxChunkSize = 500

// Separator joins sentences inside a chunk.
const Separator = " "

// Sentences splits text at terminal punctuation (. ! ?) followed by whitespace.
// Trailing text without terminal punctuation forms the last sentence.
func Sentences(text string) []string {
	var (
		sentences []string
		start     int
		prev      rune
		prevPos   = -1
	)

	for pos, r := range text {
		if prevPos >= 0 && isTerminal(prev) && unicode.IsSpace(r) {
			if s := strings.TrimSpace(text[start:pos]); s != "" {
				sentences = append(sentences, s)
			}
			start = pos
		}
		prev, prevPos = r, pos
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Split greedily packs sentences into chunks of at most maxChunkSize
// characters. A sentence longer than maxChunkSize becomes its own chunk and
// is never split.
func Split(text string, maxChunkSize int) []domain.Chunk {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	sentences := Sentences(text)
	if len(sentences) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, 0, len(sentences))
	var (
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		if bufLen == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Index:  len(chunks),
			Text:   buf.String(),
			Length: bufLen,
		})
		buf.Reset()
		bufLen = 0
	}

	for _, s := range sentences {
		n := utf8.RuneCountInString(s)
		if bufLen > 0 && bufLen+len(Separator)+n > maxChunkSize {
			flush()
		}
		if bufLen > 0 {
			buf.WriteString(Separator)
			bufLen += len(Separator)
		}
		buf.WriteString(s)
		bufLen += n
	}
	flush()

	return chunks
}
