package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge_base.yaml
var knowledgeBaseYAML []byte

// KnowledgeBase maps each learning style to a fixed list of descriptive
// sentences. It is built once and never mutated afterwards; callers must treat
// the returned slices as read-only.
type KnowledgeBase struct {
	version string
	entries map[LearningStyle][]string
}

type knowledgeBaseFile struct {
	Version string              `yaml:"version"`
	Styles  map[string][]string `yaml:"styles"`
}

var defaultKnowledgeBase = mustLoadKnowledgeBase(knowledgeBaseYAML)

// DefaultKnowledgeBase returns the process-wide knowledge base shipped with the binary.
func DefaultKnowledgeBase() *KnowledgeBase {
	return defaultKnowledgeBase
}

// LoadKnowledgeBase parses a knowledge base document.
func LoadKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var file knowledgeBaseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}

	kb := &KnowledgeBase{
		version: file.Version,
		entries: make(map[LearningStyle][]string, len(file.Styles)),
	}
	for key, sentences := range file.Styles {
		style := ParseLearningStyle(key)
		if !style.IsKnown() {
			return nil, fmt.Errorf("knowledge base: unsupported style %q", key)
		}
		kb.entries[style] = append([]string(nil), sentences...)
	}
	return kb, nil
}

func mustLoadKnowledgeBase(data []byte) *KnowledgeBase {
	kb, err := LoadKnowledgeBase(data)
	if err != nil {
		panic(err)
	}
	return kb
}

// Notes returns the sentences for style. Unknown styles yield nil.
func (kb *KnowledgeBase) Notes(style LearningStyle) []string {
	if kb == nil {
		return nil
	}
	return kb.entries[style]
}

// Version identifies the shipped knowledge base revision.
func (kb *KnowledgeBase) Version() string {
	if kb == nil {
		return ""
	}
	return kb.version
}
