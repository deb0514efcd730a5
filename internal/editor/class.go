package editor

import (
	"context"
	"fmt"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/draft"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

// ClassSession is the class builder: a class, its lessons and the
// materials attached to each lesson.
type ClassSession = draft.Session[domain.ClassFields, domain.LessonFields, domain.LessonMaterialFields]

type lessonPayload struct {
	Position int `json:"position"`
	domain.LessonFields
}

type lessonMaterialPayload struct {
	Position int `json:"position"`
	domain.LessonMaterialFields
}

// ClassBackend persists class builder drafts through the API. Classes
// belong to the signed in instructor, so the save scope is not sent.
type ClassBackend struct {
	Client Caller
}

var _ draft.Backend[domain.ClassFields, domain.LessonFields, domain.LessonMaterialFields] = ClassBackend{}

func (b ClassBackend) SaveParent(ctx context.Context, _ int64, fields domain.ClassFields, existing draft.Ident) (draft.Envelope, error) {
	return upsert(ctx, b.Client, existing, sdk.CreateClass, 0, sdk.UpdateClass, fields)
}

func (b ClassBackend) SaveChild(ctx context.Context, classID draft.ServerID, position int, data domain.LessonFields, existing draft.Ident) (draft.Envelope, error) {
	body := lessonPayload{Position: position, LessonFields: data}
	return upsert(ctx, b.Client, existing, sdk.CreateLesson, int64(classID), sdk.UpdateLesson, body)
}

func (b ClassBackend) SaveGrandchild(ctx context.Context, lessonID draft.ServerID, position int, data domain.LessonMaterialFields, existing draft.Ident) (draft.Envelope, error) {
	body := lessonMaterialPayload{Position: position, LessonMaterialFields: data}
	return upsert(ctx, b.Client, existing, sdk.CreateLessonMaterial, int64(lessonID), sdk.UpdateLessonMaterial, body)
}

func (b ClassBackend) DeleteChild(ctx context.Context, id draft.ServerID) (draft.Envelope, error) {
	return remove(ctx, b.Client, sdk.DeleteLesson, id)
}

func (b ClassBackend) DeleteGrandchild(ctx context.Context, id draft.ServerID) (draft.Envelope, error) {
	return remove(ctx, b.Client, sdk.DeleteLessonMaterial, id)
}

// NewClass starts the class builder for a new class.
func NewClass(ctx context.Context, client Caller, fields domain.ClassFields, cfg Config) *ClassSession {
	store := draft.New[domain.ClassFields, domain.LessonFields, domain.LessonMaterialFields](
		ClassBackend{Client: client}, fields, cfg.storeOptions()...)
	return draft.NewSession(ctx, store, 0, cfg.sessionOptions()...)
}

// OpenClass loads class id into the class builder.
func OpenClass(ctx context.Context, client Caller, id int64, cfg Config) (*ClassSession, error) {
	class, err := fetch[domain.Class](ctx, client, sdk.GetClass, id)
	if err != nil {
		return nil, fmt.Errorf("open class: %w", err)
	}

	children := make([]draft.Child[domain.LessonFields, domain.LessonMaterialFields], 0, len(class.Lessons))
	for _, lesson := range class.Lessons {
		items := make([]draft.Item[domain.LessonMaterialFields], 0, len(lesson.Materials))
		for _, m := range lesson.Materials {
			items = append(items, draft.Item[domain.LessonMaterialFields]{ID: draft.ServerID(m.ID), Data: m.LessonMaterialFields})
		}
		children = append(children, draft.Child[domain.LessonFields, domain.LessonMaterialFields]{
			ID:    draft.ServerID(lesson.ID),
			Data:  lesson.LessonFields,
			Items: items,
		})
	}

	store, err := draft.Load[domain.ClassFields, domain.LessonFields, domain.LessonMaterialFields](
		ClassBackend{Client: client}, draft.ServerID(class.ID), class.ClassFields, children, cfg.storeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("open class: %w", err)
	}
	return draft.NewSession(ctx, store, 0, cfg.sessionOptions()...), nil
}
