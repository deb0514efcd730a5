package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTopikLevel is the highest TOPIK level a vocabulary set can target.
const MaxTopikLevel = 6

// VocabularySetFields are the editable fields of a vocabulary set.
// Level 0 means the set is not tied to a TOPIK level.
type VocabularySetFields struct {
	Title       string `json:"title"       yaml:"title"       validate:"required,max=200"`
	Description string `json:"description" yaml:"description" validate:"max=2000"`
	Level       int    `json:"level"       yaml:"level"       validate:"gte=0,lte=6"`
}

// Validate checks the vocabulary set fields.
func (f VocabularySetFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return NewValidationError("title", "cannot be empty")
	}
	if f.Level < 0 || f.Level > MaxTopikLevel {
		return NewValidationError("level", "must be between 0 and 6")
	}
	return nil
}

// VocabularyItemFields are the editable fields of one word entry.
type VocabularyItemFields struct {
	Term         string `json:"term"         yaml:"term"         validate:"max=200"`
	Romanization string `json:"romanization" yaml:"romanization" validate:"max=200"`
	Meaning      string `json:"meaning"      yaml:"meaning"      validate:"max=1000"`
	Example      string `json:"example"      yaml:"example"      validate:"max=2000"`
}

// VocabularySet is a persisted vocabulary set with its items.
type VocabularySet struct {
	ID      int64     `json:"id"`
	ClassID int64     `json:"class_id"`
	OwnerID uuid.UUID `json:"owner_id"`
	VocabularySetFields
	Items     []VocabularyItem `json:"items"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// VocabularyItem is a persisted word entry, ordered by Position.
type VocabularyItem struct {
	ID              int64 `json:"id"`
	VocabularySetID int64 `json:"vocabulary_set_id"`
	Position        int   `json:"position"`
	VocabularyItemFields
}
