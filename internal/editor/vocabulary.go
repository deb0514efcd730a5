package editor

import (
	"context"
	"fmt"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/draft"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

// VocabularySession edits a vocabulary set and its items. Vocabulary sets
// have no third level.
type VocabularySession = draft.Session[domain.VocabularySetFields, domain.VocabularyItemFields, draft.None]

type vocabularySetPayload struct {
	ClassID int64 `json:"class_id,omitempty"`
	domain.VocabularySetFields
}

type vocabularyItemPayload struct {
	Position int `json:"position"`
	domain.VocabularyItemFields
}

// VocabularyBackend persists vocabulary set drafts through the API.
type VocabularyBackend struct {
	draft.NoGrandchildren
	Client Caller
}

var _ draft.Backend[domain.VocabularySetFields, domain.VocabularyItemFields, draft.None] = VocabularyBackend{}

func (b VocabularyBackend) SaveParent(ctx context.Context, classID int64, fields domain.VocabularySetFields, existing draft.Ident) (draft.Envelope, error) {
	body := vocabularySetPayload{VocabularySetFields: fields}
	if !existing.Saved() {
		body.ClassID = classID
	}
	return upsert(ctx, b.Client, existing, sdk.CreateVocabularySet, 0, sdk.UpdateVocabularySet, body)
}

func (b VocabularyBackend) SaveChild(ctx context.Context, setID draft.ServerID, position int, data domain.VocabularyItemFields, existing draft.Ident) (draft.Envelope, error) {
	body := vocabularyItemPayload{Position: position, VocabularyItemFields: data}
	return upsert(ctx, b.Client, existing, sdk.CreateVocabularyItem, int64(setID), sdk.UpdateVocabularyItem, body)
}

func (b VocabularyBackend) DeleteChild(ctx context.Context, id draft.ServerID) (draft.Envelope, error) {
	return remove(ctx, b.Client, sdk.DeleteVocabularyItem, id)
}

// NewVocabularySet starts an editor for a new vocabulary set in classID.
func NewVocabularySet(ctx context.Context, client Caller, classID int64, fields domain.VocabularySetFields, cfg Config) *VocabularySession {
	store := draft.New[domain.VocabularySetFields, domain.VocabularyItemFields, draft.None](
		VocabularyBackend{Client: client}, fields, cfg.storeOptions()...)
	return draft.NewSession(ctx, store, classID, cfg.sessionOptions()...)
}

// OpenVocabularySet loads vocabulary set id and starts an editor for it.
func OpenVocabularySet(ctx context.Context, client Caller, id int64, cfg Config) (*VocabularySession, error) {
	set, err := fetch[domain.VocabularySet](ctx, client, sdk.GetVocabularySet, id)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary set: %w", err)
	}

	children := make([]draft.Child[domain.VocabularyItemFields, draft.None], 0, len(set.Items))
	for _, item := range set.Items {
		children = append(children, draft.Child[domain.VocabularyItemFields, draft.None]{
			ID:   draft.ServerID(item.ID),
			Data: item.VocabularyItemFields,
		})
	}

	store, err := draft.Load[domain.VocabularySetFields, domain.VocabularyItemFields, draft.None](
		VocabularyBackend{Client: client}, draft.ServerID(set.ID), set.VocabularySetFields, children, cfg.storeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary set: %w", err)
	}
	return draft.NewSession(ctx, store, set.ClassID, cfg.sessionOptions()...), nil
}
