package editor

import (
	"context"
	"fmt"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/draft"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

// QuestionSetSession edits a question set, its questions and their answer
// options.
type QuestionSetSession = draft.Session[domain.QuestionSetFields, domain.QuestionFields, domain.AnswerOptionFields]

type questionSetPayload struct {
	ClassID int64 `json:"class_id,omitempty"`
	domain.QuestionSetFields
}

type questionPayload struct {
	Position int `json:"position"`
	domain.QuestionFields
}

type answerOptionPayload struct {
	Position int `json:"position"`
	domain.AnswerOptionFields
}

// QuestionSetBackend persists question set drafts through the API. The
// scope of a save is the class the set belongs to.
type QuestionSetBackend struct {
	Client Caller
}

var _ draft.Backend[domain.QuestionSetFields, domain.QuestionFields, domain.AnswerOptionFields] = QuestionSetBackend{}

func (b QuestionSetBackend) SaveParent(ctx context.Context, classID int64, fields domain.QuestionSetFields, existing draft.Ident) (draft.Envelope, error) {
	body := questionSetPayload{QuestionSetFields: fields}
	if !existing.Saved() {
		body.ClassID = classID
	}
	return upsert(ctx, b.Client, existing, sdk.CreateQuestionSet, 0, sdk.UpdateQuestionSet, body)
}

func (b QuestionSetBackend) SaveChild(ctx context.Context, setID draft.ServerID, position int, data domain.QuestionFields, existing draft.Ident) (draft.Envelope, error) {
	body := questionPayload{Position: position, QuestionFields: data}
	return upsert(ctx, b.Client, existing, sdk.CreateQuestion, int64(setID), sdk.UpdateQuestion, body)
}

func (b QuestionSetBackend) SaveGrandchild(ctx context.Context, questionID draft.ServerID, position int, data domain.AnswerOptionFields, existing draft.Ident) (draft.Envelope, error) {
	body := answerOptionPayload{Position: position, AnswerOptionFields: data}
	return upsert(ctx, b.Client, existing, sdk.CreateAnswerOption, int64(questionID), sdk.UpdateAnswerOption, body)
}

func (b QuestionSetBackend) DeleteChild(ctx context.Context, id draft.ServerID) (draft.Envelope, error) {
	return remove(ctx, b.Client, sdk.DeleteQuestion, id)
}

func (b QuestionSetBackend) DeleteGrandchild(ctx context.Context, id draft.ServerID) (draft.Envelope, error) {
	return remove(ctx, b.Client, sdk.DeleteAnswerOption, id)
}

// NewQuestionSet starts an editor for a question set that does not exist
// yet. It is created in classID on the first save.
func NewQuestionSet(ctx context.Context, client Caller, classID int64, fields domain.QuestionSetFields, cfg Config) *QuestionSetSession {
	store := draft.New[domain.QuestionSetFields, domain.QuestionFields, domain.AnswerOptionFields](
		QuestionSetBackend{Client: client}, fields, cfg.storeOptions()...)
	return draft.NewSession(ctx, store, classID, cfg.sessionOptions()...)
}

// OpenQuestionSet loads question set id and starts an editor for it.
func OpenQuestionSet(ctx context.Context, client Caller, id int64, cfg Config) (*QuestionSetSession, error) {
	set, err := fetch[domain.QuestionSet](ctx, client, sdk.GetQuestionSet, id)
	if err != nil {
		return nil, fmt.Errorf("open question set: %w", err)
	}

	children := make([]draft.Child[domain.QuestionFields, domain.AnswerOptionFields], 0, len(set.Questions))
	for _, q := range set.Questions {
		items := make([]draft.Item[domain.AnswerOptionFields], 0, len(q.Options))
		for _, o := range q.Options {
			items = append(items, draft.Item[domain.AnswerOptionFields]{ID: draft.ServerID(o.ID), Data: o.AnswerOptionFields})
		}
		children = append(children, draft.Child[domain.QuestionFields, domain.AnswerOptionFields]{
			ID:    draft.ServerID(q.ID),
			Data:  q.QuestionFields,
			Items: items,
		})
	}

	store, err := draft.Load[domain.QuestionSetFields, domain.QuestionFields, domain.AnswerOptionFields](
		QuestionSetBackend{Client: client}, draft.ServerID(set.ID), set.QuestionSetFields, children, cfg.storeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("open question set: %w", err)
	}
	return draft.NewSession(ctx, store, set.ClassID, cfg.sessionOptions()...), nil
}
