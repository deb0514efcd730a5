package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// QuestionKind is the answer format of a question.
type QuestionKind string

// Supported question kinds.
const (
	QuestionKindMultipleChoice QuestionKind = "multiple_choice"
	QuestionKindShortAnswer    QuestionKind = "short_answer"
	QuestionKindTrueFalse      QuestionKind = "true_false"
)

// Valid reports whether k is a supported kind.
func (k QuestionKind) Valid() bool {
	switch k {
	case QuestionKindMultipleChoice, QuestionKindShortAnswer, QuestionKindTrueFalse:
		return true
	}
	return false
}

// QuestionSetFields are the editable fields of a quiz or tryout.
// Title and Description form the "meta" section; the rest is "content".
type QuestionSetFields struct {
	Title            string `json:"title"              yaml:"title"              validate:"required,max=200"`
	Description      string `json:"description"        yaml:"description"        validate:"max=2000"`
	Instructions     string `json:"instructions"       yaml:"instructions"       validate:"max=4000"`
	TimeLimitMinutes int    `json:"time_limit_minutes" yaml:"time_limit_minutes" validate:"gte=0,lte=600"`
	Shuffle          bool   `json:"shuffle"            yaml:"shuffle"`
}

// Validate checks the question set fields.
func (f QuestionSetFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return NewValidationError("title", "cannot be empty")
	}
	if utf8.RuneCountInString(f.Title) > 200 {
		return NewValidationError("title", "must be at most 200 characters")
	}
	if f.TimeLimitMinutes < 0 || f.TimeLimitMinutes > 600 {
		return NewValidationError("time_limit_minutes", "must be between 0 and 600")
	}
	return nil
}

// QuestionFields are the editable fields of a single question.
type QuestionFields struct {
	Prompt      string       `json:"prompt"      yaml:"prompt"      validate:"max=4000"`
	Kind        QuestionKind `json:"kind"        yaml:"kind"        validate:"required,oneof=multiple_choice short_answer true_false"`
	Explanation string       `json:"explanation" yaml:"explanation" validate:"max=4000"`
	Points      int          `json:"points"      yaml:"points"      validate:"gte=0,lte=100"`
	// Answer holds the expected answer for short_answer questions.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty" validate:"max=500"`
}

// Validate checks the question fields. An empty prompt is allowed so that
// freshly added questions can be saved as drafts.
func (f QuestionFields) Validate() error {
	if !f.Kind.Valid() {
		return NewValidationError("kind", "unsupported question kind")
	}
	if f.Points < 0 || f.Points > 100 {
		return NewValidationError("points", "must be between 0 and 100")
	}
	return nil
}

// AnswerOptionFields are the editable fields of a multiple-choice option.
type AnswerOptionFields struct {
	Text      string `json:"text"       yaml:"text"       validate:"max=1000"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

// QuestionSet is a persisted question set with its questions.
type QuestionSet struct {
	ID      int64     `json:"id"`
	ClassID int64     `json:"class_id"`
	OwnerID uuid.UUID `json:"owner_id"`
	QuestionSetFields
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Question is a persisted question with its options, ordered by Position.
type Question struct {
	ID            int64 `json:"id"`
	QuestionSetID int64 `json:"question_set_id"`
	Position      int   `json:"position"`
	QuestionFields
	Options []AnswerOption `json:"options"`
}

// AnswerOption is a persisted answer option, ordered by Position.
type AnswerOption struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`
	Position   int   `json:"position"`
	AnswerOptionFields
}
