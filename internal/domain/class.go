package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Visibility controls who can see a class.
type Visibility string

// Class visibility values.
const (
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPublic   Visibility = "public"
)

// ClassFields are the editable fields of a class.
// Title and Description are "meta"; Level and Visibility are "content".
type ClassFields struct {
	Title       string     `json:"title"       yaml:"title"       validate:"required,max=200"`
	Description string     `json:"description" yaml:"description" validate:"max=4000"`
	Level       int        `json:"level"       yaml:"level"       validate:"gte=0,lte=6"`
	Visibility  Visibility `json:"visibility"  yaml:"visibility"  validate:"required,oneof=private unlisted public"`
}

// Validate checks the class fields.
func (f ClassFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return NewValidationError("title", "cannot be empty")
	}
	switch f.Visibility {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
	default:
		return NewValidationError("visibility", "must be private, unlisted or public")
	}
	return nil
}

// LessonFields are the editable fields of a lesson in a class.
type LessonFields struct {
	Title   string `json:"title"   yaml:"title"   validate:"max=200"`
	Summary string `json:"summary" yaml:"summary" validate:"max=4000"`
}

// LessonMaterialFields attach an existing material to a lesson.
type LessonMaterialFields struct {
	MaterialID int64  `json:"material_id" yaml:"material_id" validate:"required,gt=0"`
	Note       string `json:"note"        yaml:"note"        validate:"max=1000"`
	Required   bool   `json:"required"    yaml:"required"`
}

// Class is a persisted class with its lessons.
type Class struct {
	ID      int64     `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	ClassFields
	Lessons   []Lesson  `json:"lessons"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lesson is a persisted lesson, ordered by Position.
type Lesson struct {
	ID       int64 `json:"id"`
	ClassID  int64 `json:"class_id"`
	Position int   `json:"position"`
	LessonFields
	Materials []LessonMaterial `json:"materials"`
}

// LessonMaterial is a persisted material attachment, ordered by Position.
type LessonMaterial struct {
	ID       int64 `json:"id"`
	LessonID int64 `json:"lesson_id"`
	Position int   `json:"position"`
	LessonMaterialFields
}
