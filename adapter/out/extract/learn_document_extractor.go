// Package extract pulls plain text out of uploaded documents.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"learning_server/core/domain"
	"learning_server/core/port/out"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind is a supported document format.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindPPTX     Kind = "pptx"
	KindXLSX     Kind = "xlsx"
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
)

var (
	errEmptyDocument = errors.New("document contains no text")
	errUnsupported   = errors.New("unsupported document type")

	paragraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
	slideName    = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

type Extractor struct {
	md  goldmark.Markdown
	log zerolog.Logger
}

var _ out.TextExtractor = (*Extractor)(nil)

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{
		md:  goldmark.New(),
		log: log.With().Str("component", "extractor").Logger(),
	}
}

// DetectKind picks the format from the content type, then the file extension.
func DetectKind(filename, contentType string) (Kind, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case "application/pdf":
		return KindPDF, true
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDOCX, true
	case "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return KindPPTX, true
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return KindXLSX, true
	case "text/markdown", "text/x-markdown":
		return KindMarkdown, true
	case "text/plain":
		return KindText, true
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, true
	case ".docx":
		return KindDOCX, true
	case ".pptx":
		return KindPPTX, true
	case ".xlsx":
		return KindXLSX, true
	case ".md", ".markdown":
		return KindMarkdown, true
	case ".txt", ".text":
		return KindText, true
	}
	return "", false
}

// Extract returns the plain text of data. Every failure, including a document
// without any text, is a *domain.ExtractionError.
func (e *Extractor) Extract(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	kind, ok := DetectKind(filename, contentType)
	if !ok {
		return "", &domain.ExtractionError{ContentType: contentType, Err: errUnsupported}
	}
	if err := ctx.Err(); err != nil {
		return "", &domain.ExtractionError{ContentType: string(kind), Err: err}
	}

	var (
		content string
		err     error
	)
	switch kind {
	case KindPDF:
		content, err = extractPDF(data)
	case KindDOCX:
		content, err = extractDOCX(data)
	case KindPPTX:
		content, err = extractPPTX(data)
	case KindXLSX:
		content, err = extractXLSX(data)
	case KindMarkdown:
		content = e.extractMarkdown(data)
	case KindText:
		content = string(data)
	}
	if err == nil && strings.TrimSpace(content) == "" {
		err = errEmptyDocument
	}
	if err != nil {
		e.log.Warn().Err(err).Str("kind", string(kind)).Str("filename", filename).Int("bytes", len(data)).Msg("text extraction failed")
		return "", &domain.ExtractionError{ContentType: string(kind), Err: err}
	}

	content = strings.TrimSpace(blankLines.ReplaceAllString(content, "\n\n"))
	e.log.Debug().Str("kind", string(kind)).Int("chars", len(content)).Msg("text extracted")
	return content, nil
}

// extractPDF reads the plain text of every page. The pdf reader panics on
// some malformed inputs, so panics are turned into errors.
func extractPDF(data []byte) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer r.Close()

	raw := r.Editable().GetContent()
	raw = paragraphEnd.ReplaceAllString(raw, "\n")
	return html.UnescapeString(xmlTag.ReplaceAllString(raw, "")), nil
}

func extractPPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pptx: %w", err)
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		m := slideName.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sb strings.Builder
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open slide %d: %w", s.num, err)
		}
		xml, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read slide %d: %w", s.num, err)
		}
		sb.WriteString(slideText(string(xml)))
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// slideText collects the <a:t> runs of a slide.
func slideText(xml string) string {
	var parts []string
	for _, part := range strings.Split(xml, "<a:t>")[1:] {
		if end := strings.Index(part, "</a:t>"); end >= 0 {
			parts = append(parts, html.UnescapeString(part[:end]))
		}
	}
	return strings.Join(parts, " ")
}

func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		fmt.Fprintf(&sb, "%s.\n", sheet)
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if cell = strings.TrimSpace(cell); cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				sb.WriteString(strings.Join(cells, ", "))
				sb.WriteString(".\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// extractMarkdown drops markup and keeps the text of every block.
func (e *Extractor) extractMarkdown(data []byte) string {
	doc := e.md.Parser().Parse(text.NewReader(data))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(data))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
