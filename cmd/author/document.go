package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hangeul-lab/authoring/internal/domain"
)

// Document kinds accepted by push.
const (
	KindQuestionSet   = "question_set"
	KindVocabularySet = "vocabulary_set"
)

// document is an authoring file. ID, when set, names an existing set whose
// fields and entries are replaced by the file's content.
type document struct {
	Kind          string                 `yaml:"kind"`
	ID            int64                  `yaml:"id,omitempty"`
	QuestionSet   *questionSetDocument   `yaml:"question_set,omitempty"`
	VocabularySet *vocabularySetDocument `yaml:"vocabulary_set,omitempty"`
}

type questionSetDocument struct {
	domain.QuestionSetFields `yaml:",inline"`
	Questions                []questionDocument `yaml:"questions"`
}

type questionDocument struct {
	domain.QuestionFields `yaml:",inline"`
	Options               []domain.AnswerOptionFields `yaml:"options"`
}

type vocabularySetDocument struct {
	domain.VocabularySetFields `yaml:",inline"`
	Items                      []domain.VocabularyItemFields `yaml:"items"`
}

// readDocument parses and checks the authoring file at path. "-" reads
// standard input.
func readDocument(path string) (*document, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseDocument(raw)
}

func parseDocument(raw []byte) (*document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document is empty")
		}
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *document) validate() error {
	if d.ID < 0 {
		return fmt.Errorf("invalid id %d", d.ID)
	}
	switch d.Kind {
	case KindQuestionSet:
		if d.QuestionSet == nil {
			return errors.New("kind question_set requires a question_set section")
		}
		if err := d.QuestionSet.Validate(); err != nil {
			return err
		}
		for i, q := range d.QuestionSet.Questions {
			if err := q.Validate(); err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
		}
	case KindVocabularySet:
		if d.VocabularySet == nil {
			return errors.New("kind vocabulary_set requires a vocabulary_set section")
		}
		if err := d.VocabularySet.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown kind %q, want %s or %s", d.Kind, KindQuestionSet, KindVocabularySet)
	}
	return nil
}
