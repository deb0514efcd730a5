package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/domain"
)

// QuestionSetStore persists question sets, their questions and the answer
// options of each question. Deleting a row removes the rows below it.
type QuestionSetStore interface {
	// List returns the caller's question sets without their questions,
	// newest first.
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.QuestionSet, error)

	// Get returns a question set with its questions and options ordered by
	// position. Returns ErrQuestionSetNotFound when missing.
	Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.QuestionSet, error)

	// Create inserts a question set. A classID of zero leaves the set
	// outside any class; otherwise the class must belong to the caller.
	Create(ctx context.Context, ownerID uuid.UUID, classID int64, fields domain.QuestionSetFields) (int64, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int64, fields domain.QuestionSetFields) error
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error

	CreateQuestion(ctx context.Context, ownerID uuid.UUID, setID int64, position int, fields domain.QuestionFields) (int64, error)
	UpdateQuestion(ctx context.Context, ownerID uuid.UUID, id int64, position int, fields domain.QuestionFields) error
	DeleteQuestion(ctx context.Context, ownerID uuid.UUID, id int64) error

	CreateOption(ctx context.Context, ownerID uuid.UUID, questionID int64, position int, fields domain.AnswerOptionFields) (int64, error)
	UpdateOption(ctx context.Context, ownerID uuid.UUID, id int64, position int, fields domain.AnswerOptionFields) error
	DeleteOption(ctx context.Context, ownerID uuid.UUID, id int64) error
}

// VocabularyStore persists vocabulary sets and their items.
type VocabularyStore interface {
	Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.VocabularySet, error)
	Create(ctx context.Context, ownerID uuid.UUID, classID int64, fields domain.VocabularySetFields) (int64, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int64, fields domain.VocabularySetFields) error

	CreateItem(ctx context.Context, ownerID uuid.UUID, setID int64, position int, fields domain.VocabularyItemFields) (int64, error)
	UpdateItem(ctx context.Context, ownerID uuid.UUID, id int64, position int, fields domain.VocabularyItemFields) error
	DeleteItem(ctx context.Context, ownerID uuid.UUID, id int64) error
}

// ClassStore persists classes, their lessons and the materials attached to
// each lesson.
type ClassStore interface {
	Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Class, error)
	Create(ctx context.Context, ownerID uuid.UUID, fields domain.ClassFields) (int64, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int64, fields domain.ClassFields) error

	CreateLesson(ctx context.Context, ownerID uuid.UUID, classID int64, position int, fields domain.LessonFields) (int64, error)
	UpdateLesson(ctx context.Context, ownerID uuid.UUID, id int64, position int, fields domain.LessonFields) error
	DeleteLesson(ctx context.Context, ownerID uuid.UUID, id int64) error

	// CreateMaterial attaches a material to a lesson. Returns
	// ErrMaterialNotFound when MaterialID does not exist.
	CreateMaterial(ctx context.Context, ownerID uuid.UUID, lessonID int64, position int, fields domain.LessonMaterialFields) (int64, error)
	UpdateMaterial(ctx context.Context, ownerID uuid.UUID, id int64, position int, fields domain.LessonMaterialFields) error
	DeleteMaterial(ctx context.Context, ownerID uuid.UUID, id int64) error
}

// PostStore keeps the like counters of discussion posts. Liking twice or
// unliking a post that was not liked leaves the counter unchanged.
type PostStore interface {
	Like(ctx context.Context, userID uuid.UUID, postID int64) (domain.PostLikes, error)
	Unlike(ctx context.Context, userID uuid.UUID, postID int64) (domain.PostLikes, error)
}
