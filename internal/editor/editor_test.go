package editor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/draft"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

type request struct {
	endpoint string
	params   sdk.Params
	body     any
}

// fakeCaller answers every request with DoFn, or with a fresh id when
// DoFn is nil.
type fakeCaller struct {
	mu       sync.Mutex
	nextID   int64
	requests []request
	DoFn     func(endpoint string, params sdk.Params, body, out any) error
}

func (f *fakeCaller) Do(_ context.Context, endpoint string, params sdk.Params, body, out any) error {
	f.mu.Lock()
	f.requests = append(f.requests, request{endpoint: endpoint, params: params, body: body})
	f.nextID++
	id := f.nextID
	fn := f.DoFn
	f.mu.Unlock()

	if fn != nil {
		return fn(endpoint, params, body, out)
	}
	if env, ok := out.(*sdk.Envelope[sdk.IDData]); ok {
		env.Success = true
		env.Data.ID = id
	}
	return nil
}

func (f *fakeCaller) endpoints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.endpoint)
	}
	return out
}

func (f *fakeCaller) last() request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func fillEnvelope[T any](t *testing.T, out any, data T) {
	t.Helper()
	env, ok := out.(*sdk.Envelope[T])
	require.True(t, ok, "unexpected out type %T", out)
	env.Success = true
	env.Data = data
}

func TestNewQuestionSetSavesThroughAPI(t *testing.T) {
	caller := &fakeCaller{}
	sess := NewQuestionSet(context.Background(), caller, 3, domain.QuestionSetFields{}, Config{})
	t.Cleanup(sess.Close)

	st := sess.Store()
	st.UpdateParent(draft.SectionMeta, func(f *domain.QuestionSetFields) { f.Title = "Set A" })
	st.AddChild(domain.QuestionFields{Prompt: "사과는 영어로?", Kind: domain.QuestionKindMultipleChoice})
	st.AddItem(0, domain.AnswerOptionFields{Text: "apple", IsCorrect: true})

	require.True(t, sess.TrySaveAndClose(context.Background()))
	assert.Equal(t, []string{sdk.CreateQuestionSet, sdk.CreateQuestion, sdk.CreateAnswerOption}, caller.endpoints())

	first := caller.requests[0]
	payload, ok := first.body.(questionSetPayload)
	require.True(t, ok)
	assert.Equal(t, int64(3), payload.ClassID)
	assert.Equal(t, "Set A", payload.Title)

	// The question is created under the set id handed out first, the
	// option under the question id handed out second.
	assert.Equal(t, sdk.ID(1), caller.requests[1].params)
	assert.Equal(t, sdk.ID(2), caller.requests[2].params)
}

func TestOpenQuestionSetUpdatesAndDeletes(t *testing.T) {
	caller := &fakeCaller{}
	caller.DoFn = func(endpoint string, params sdk.Params, body, out any) error {
		switch endpoint {
		case sdk.GetQuestionSet:
			fillEnvelope(t, out, domain.QuestionSet{
				ID:                40,
				ClassID:           3,
				QuestionSetFields: domain.QuestionSetFields{Title: "Loaded"},
				Questions: []domain.Question{
					{ID: 41, QuestionFields: domain.QuestionFields{Prompt: "q1", Kind: domain.QuestionKindShortAnswer}},
					{ID: 42, Position: 1, QuestionFields: domain.QuestionFields{Prompt: "q2", Kind: domain.QuestionKindTrueFalse},
						Options: []domain.AnswerOption{{ID: 43, AnswerOptionFields: domain.AnswerOptionFields{Text: "참"}}}},
				},
			})
			return nil
		case sdk.DeleteQuestion:
			return &sdk.APIError{Status: http.StatusNotFound, Message: "not found"}
		}
		fillEnvelope(t, out, sdk.IDData{})
		return nil
	}

	sess, err := OpenQuestionSet(context.Background(), caller, 40, Config{})
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	st := sess.Store()
	require.Len(t, st.Children(), 2)
	require.True(t, st.RemoveChild(0))
	require.True(t, st.UpdateItem(0, 0, func(o *domain.AnswerOptionFields) { o.IsCorrect = true }))

	require.NoError(t, sess.Save(context.Background()))
	assert.Equal(t, []string{
		sdk.GetQuestionSet,
		sdk.DeleteQuestion,
		sdk.UpdateQuestion,
		sdk.UpdateAnswerOption,
	}, caller.endpoints(), "a missing question counts as deleted")
	assert.Equal(t, draft.StatusSaved, sess.Status())
}

func TestRejectedSaveSurfacesMessage(t *testing.T) {
	caller := &fakeCaller{DoFn: func(endpoint string, params sdk.Params, body, out any) error {
		return &sdk.APIError{Status: http.StatusUnprocessableEntity, Message: "title is required"}
	}}
	sess := NewVocabularySet(context.Background(), caller, 1, domain.VocabularySetFields{}, Config{})
	t.Cleanup(sess.Close)

	sess.Store().AddChild(domain.VocabularyItemFields{Term: "사랑", Meaning: "love"})
	assert.False(t, sess.TrySaveAndClose(context.Background()))
	require.ErrorIs(t, sess.Store().Err(), draft.ErrParentFailed)
	assert.ErrorContains(t, sess.Store().Err(), "title is required")
}

func TestTransportFailureIsReported(t *testing.T) {
	caller := &fakeCaller{DoFn: func(string, sdk.Params, any, any) error {
		return errors.New("network unreachable")
	}}
	sess := NewClass(context.Background(), caller, domain.ClassFields{Title: "Beginner"}, Config{})
	t.Cleanup(sess.Close)

	sess.Store().UpdateParent(draft.SectionContent, func(f *domain.ClassFields) { f.Visibility = domain.VisibilityPublic })
	assert.False(t, sess.TrySaveAndClose(context.Background()))
	assert.ErrorContains(t, sess.Store().Err(), "network unreachable")
}

func TestClassBuilderAgainstHTTPServer(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		n := len(paths)
		mu.Unlock()

		assert.Equal(t, "hangeul_session=tok", r.Header.Get("Cookie"))
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 100 + n}})
	}))
	t.Cleanup(srv.Close)

	client, err := sdk.New(srv.URL, sdk.WithCookieSource(sdk.StaticCookie("hangeul_session=tok")))
	require.NoError(t, err)

	sess := NewClass(context.Background(), client, domain.ClassFields{}, Config{})
	t.Cleanup(sess.Close)
	st := sess.Store()
	st.UpdateParent(draft.SectionMeta, func(f *domain.ClassFields) { f.Title = "TOPIK I" })
	st.AddChild(domain.LessonFields{Title: "한글"})
	st.AddItem(0, domain.LessonMaterialFields{MaterialID: 5})

	require.True(t, sess.TrySaveAndClose(context.Background()))
	assert.Equal(t, []string{
		"POST /api/classes",
		"POST /api/classes/101/lessons",
		"POST /api/lessons/102/materials",
	}, paths)

	st.RemoveItem(0, 0)
	require.True(t, sess.TrySaveAndClose(context.Background()))
	assert.Equal(t, "DELETE /api/lesson-materials/103", paths[len(paths)-1])
}

func TestLikeToggle(t *testing.T) {
	t.Run("success takes the server state", func(t *testing.T) {
		caller := &fakeCaller{DoFn: func(endpoint string, params sdk.Params, body, out any) error {
			assert.Equal(t, sdk.LikePost, endpoint)
			fillEnvelope(t, out, domain.PostLikes{PostID: 8, LikeCount: 12, Liked: true})
			return nil
		}}
		toggle := NewLikeToggle(caller, domain.PostLikes{PostID: 8, LikeCount: 10}, nil)

		require.NoError(t, toggle.Toggle(context.Background()))
		assert.Equal(t, domain.PostLikes{PostID: 8, LikeCount: 12, Liked: true}, toggle.State())
		assert.ErrorIs(t, toggle.Retry(context.Background()), draft.ErrNothingToRetry)
	})

	t.Run("failure rolls back and retry recovers", func(t *testing.T) {
		fail := true
		var seen []domain.PostLikes
		var toggle *LikeToggle
		caller := &fakeCaller{DoFn: func(endpoint string, params sdk.Params, body, out any) error {
			seen = append(seen, toggle.State())
			if fail {
				return &sdk.APIError{Status: http.StatusServiceUnavailable}
			}
			fillEnvelope(t, out, domain.PostLikes{PostID: 8, LikeCount: 11, Liked: true})
			return nil
		}}
		toggle = NewLikeToggle(caller, domain.PostLikes{PostID: 8, LikeCount: 10}, nil)

		require.Error(t, toggle.Toggle(context.Background()))
		assert.Equal(t, domain.PostLikes{PostID: 8, LikeCount: 11, Liked: true}, seen[0], "optimistic while in flight")
		assert.Equal(t, domain.PostLikes{PostID: 8, LikeCount: 10}, toggle.State())
		assert.Error(t, toggle.Err())

		fail = false
		require.NoError(t, toggle.Retry(context.Background()))
		assert.Equal(t, domain.PostLikes{PostID: 8, LikeCount: 11, Liked: true}, toggle.State())
		assert.NoError(t, toggle.Err())
	})
}
