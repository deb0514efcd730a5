package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hangeul-lab/authoring/internal/draft"
	"github.com/hangeul-lab/authoring/internal/editor"
)

// errNotSaved is returned when the close guard kept the editor open.
var errNotSaved = errors.New("draft was not saved")

// push writes doc through an editor session and returns the id of the
// saved set. New sets are created in scopeID.
func push(ctx context.Context, client editor.Caller, doc *document, scopeID int64, cfg editor.Config) (int64, error) {
	switch doc.Kind {
	case KindQuestionSet:
		return pushQuestionSet(ctx, client, doc.ID, doc.QuestionSet, scopeID, cfg)
	case KindVocabularySet:
		return pushVocabularySet(ctx, client, doc.ID, doc.VocabularySet, scopeID, cfg)
	}
	return 0, fmt.Errorf("unknown kind %q", doc.Kind)
}

func pushQuestionSet(ctx context.Context, client editor.Caller, id int64, d *questionSetDocument, scopeID int64, cfg editor.Config) (int64, error) {
	var sess *editor.QuestionSetSession
	if id == 0 {
		sess = editor.NewQuestionSet(ctx, client, scopeID, d.QuestionSetFields, cfg)
	} else {
		var err error
		if sess, err = editor.OpenQuestionSet(ctx, client, id, cfg); err != nil {
			return 0, err
		}
		clearChildren(sess.Store())
	}
	defer sess.Close()

	store := sess.Store()
	replaceParent(store, d.QuestionSetFields)
	for _, q := range d.Questions {
		store.AddChild(q.QuestionFields)
		index := len(store.Children()) - 1
		for _, o := range q.Options {
			store.AddItem(index, o)
		}
	}
	return closeSession(ctx, sess)
}

func pushVocabularySet(ctx context.Context, client editor.Caller, id int64, d *vocabularySetDocument, scopeID int64, cfg editor.Config) (int64, error) {
	var sess *editor.VocabularySession
	if id == 0 {
		sess = editor.NewVocabularySet(ctx, client, scopeID, d.VocabularySetFields, cfg)
	} else {
		var err error
		if sess, err = editor.OpenVocabularySet(ctx, client, id, cfg); err != nil {
			return 0, err
		}
		clearChildren(sess.Store())
	}
	defer sess.Close()

	store := sess.Store()
	replaceParent(store, d.VocabularySetFields)
	for _, item := range d.Items {
		store.AddChild(item)
	}
	return closeSession(ctx, sess)
}

// replaceParent overwrites both parent sections and marks them dirty, so a
// new draft is created even when it has no entries.
func replaceParent[P, C, G any](store *draft.Store[P, C, G], fields P) {
	store.UpdateParent(draft.SectionMeta, func(p *P) { *p = fields })
	store.UpdateParent(draft.SectionContent, func(p *P) { *p = fields })
}

// clearChildren removes every child; persisted ones are deleted on save.
func clearChildren[P, C, G any](store *draft.Store[P, C, G]) {
	for n := len(store.Children()); n > 0; n-- {
		store.RemoveChild(n - 1)
	}
}

// closeSession runs the close guard and reports the parent id.
func closeSession[P, C, G any](ctx context.Context, sess *draft.Session[P, C, G]) (int64, error) {
	if !sess.TrySaveAndClose(ctx) {
		if err := sess.Store().Err(); err != nil {
			return 0, fmt.Errorf("%w: %w", errNotSaved, err)
		}
		return 0, errNotSaved
	}
	sid, ok := draft.AsServerID(sess.Store().ParentID())
	if !ok {
		return 0, errNotSaved
	}
	return int64(sid), nil
}
