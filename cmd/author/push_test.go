package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/editor"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

const questionSetYAML = `
kind: question_set
question_set:
  title: TOPIK I 듣기
  time_limit_minutes: 20
  questions:
    - prompt: 다음을 듣고 알맞은 것을 고르십시오.
      kind: multiple_choice
      points: 2
      options:
        - text: 네, 학생이에요.
          is_correct: true
        - text: 아니요, 학생이 있어요.
    - prompt: 빈칸에 들어갈 말을 쓰십시오.
      kind: short_answer
      answer: 학교
`

type call struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeAPI answers like the authoring API: creates and updates return
// increasing ids, deletes return 204 and question set 7 can be loaded.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []call
	nextID int64
	fail   string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	c := call{Method: r.Method, Path: r.URL.Path}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &c.Body)
	}

	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.nextID++
	id := 100 + f.nextID
	fail := f.fail
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method+" "+r.URL.Path == fail:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Invalid title: required field","code":"invalid_request"}`))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/api/question-sets/7":
		_ = json.NewEncoder(w).Encode(sdk.Envelope[domain.QuestionSet]{Success: true, Data: domain.QuestionSet{
			ID:                7,
			ClassID:           3,
			QuestionSetFields: domain.QuestionSetFields{Title: "Old"},
			Questions: []domain.Question{{
				ID:             70,
				QuestionFields: domain.QuestionFields{Kind: domain.QuestionKindTrueFalse},
				Options:        []domain.AnswerOption{{ID: 700}},
			}},
		}})
	case r.Method == http.MethodGet:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"Question set not found","code":"not_found"}`))
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": id}})
	}
}

func (f *fakeAPI) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

func newFakeClient(t *testing.T, api *fakeAPI) *sdk.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := sdk.New(srv.URL,
		sdk.WithCookieSource(sdk.StaticCookie("hangeul_session=tok")),
		sdk.WithRetryPolicy(sdk.RetryPolicy{Retries: 0}))
	require.NoError(t, err)
	return client
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "question set", input: questionSetYAML},
		{
			name:  "vocabulary set",
			input: "kind: vocabulary_set\nvocabulary_set:\n  title: 음식\n  level: 1\n  items:\n    - term: 김치\n      meaning: kimchi\n",
		},
		{name: "empty", input: "", wantErr: "document is empty"},
		{name: "unknown kind", input: "kind: lesson\n", wantErr: `unknown kind "lesson"`},
		{name: "missing section", input: "kind: question_set\n", wantErr: "requires a question_set section"},
		{name: "unknown field", input: "kind: question_set\nquestion_set:\n  title: x\n  colour: red\n", wantErr: "colour"},
		{name: "blank title", input: "kind: vocabulary_set\nvocabulary_set:\n  title: \" \"\n", wantErr: "title"},
		{
			name:    "bad question kind",
			input:   "kind: question_set\nquestion_set:\n  title: x\n  questions:\n    - kind: essay\n",
			wantErr: "question 1",
		},
		{name: "negative id", input: "kind: question_set\nid: -1\nquestion_set:\n  title: x\n", wantErr: "invalid id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parseDocument([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, doc.Kind)
		})
	}
}

func TestParseDocumentInlinesFields(t *testing.T) {
	doc, err := parseDocument([]byte(questionSetYAML))
	require.NoError(t, err)

	qs := doc.QuestionSet
	assert.Equal(t, "TOPIK I 듣기", qs.Title)
	assert.Equal(t, 20, qs.TimeLimitMinutes)
	require.Len(t, qs.Questions, 2)
	assert.Equal(t, domain.QuestionKindMultipleChoice, qs.Questions[0].Kind)
	require.Len(t, qs.Questions[0].Options, 2)
	assert.True(t, qs.Questions[0].Options[0].IsCorrect)
	assert.Equal(t, "학교", qs.Questions[1].Answer)
}

func TestPushNewQuestionSet(t *testing.T) {
	api := &fakeAPI{}
	client := newFakeClient(t, api)
	doc, err := parseDocument([]byte(questionSetYAML))
	require.NoError(t, err)

	id, err := push(context.Background(), client, doc, 12, editor.Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)

	assert.Equal(t, []string{
		"POST /api/question-sets",
		"POST /api/question-sets/101/questions",
		"POST /api/question-sets/101/questions",
		"POST /api/questions/102/options",
		"POST /api/questions/102/options",
	}, api.paths())
	assert.EqualValues(t, 12, api.calls[0].Body["class_id"])
	assert.EqualValues(t, 1, api.calls[2].Body["position"])
	assert.Equal(t, "아니요, 학생이 있어요.", api.calls[4].Body["text"])
}

func TestPushExistingQuestionSetReplacesEntries(t *testing.T) {
	api := &fakeAPI{}
	client := newFakeClient(t, api)
	doc, err := parseDocument([]byte("kind: question_set\nid: 7\nquestion_set:\n  title: New\n  questions:\n    - kind: true_false\n"))
	require.NoError(t, err)

	id, err := push(context.Background(), client, doc, 0, editor.Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	paths := api.paths()
	assert.Equal(t, "GET /api/question-sets/7", paths[0])
	assert.Contains(t, paths, "DELETE /api/questions/70")
	assert.Contains(t, paths, "PUT /api/question-sets/7")
	assert.Contains(t, paths, "POST /api/question-sets/7/questions")
	assert.NotContains(t, paths, "DELETE /api/options/700")
}

func TestPushVocabularySet(t *testing.T) {
	api := &fakeAPI{}
	client := newFakeClient(t, api)
	doc, err := parseDocument([]byte("kind: vocabulary_set\nvocabulary_set:\n  title: 음식\n  items:\n    - term: 김치\n    - term: 밥\n"))
	require.NoError(t, err)

	id, err := push(context.Background(), client, doc, 0, editor.Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)
	assert.Equal(t, []string{
		"POST /api/vocabulary-sets",
		"POST /api/vocabulary-sets/101/items",
		"POST /api/vocabulary-sets/101/items",
	}, api.paths())
	assert.Nil(t, api.calls[0].Body["class_id"])
}

func TestPushRejectedReportsServerMessage(t *testing.T) {
	api := &fakeAPI{fail: "POST /api/vocabulary-sets"}
	client := newFakeClient(t, api)
	doc, err := parseDocument([]byte("kind: vocabulary_set\nvocabulary_set:\n  title: 음식\n"))
	require.NoError(t, err)

	_, err = push(context.Background(), client, doc, 0, editor.Config{})
	require.ErrorIs(t, err, errNotSaved)
	assert.Contains(t, err.Error(), "Invalid title: required field")
}

func TestPushOpenFailure(t *testing.T) {
	api := &fakeAPI{}
	client := newFakeClient(t, api)
	doc, err := parseDocument([]byte("kind: question_set\nid: 9\nquestion_set:\n  title: x\n"))
	require.NoError(t, err)

	_, err = push(context.Background(), client, doc, 0, editor.Config{})
	require.Error(t, err)
	assert.True(t, sdk.IsStatus(err, http.StatusNotFound))
}

func TestRun(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	file := filepath.Join(dir, "set.yaml")
	require.NoError(t, os.WriteFile(file, []byte(questionSetYAML), 0o600))
	cookie := filepath.Join(dir, "cookie")
	require.NoError(t, sdk.FileCookieStore{Path: cookie}.Save("hangeul_session=tok"))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"push", "-server", srv.URL, "-cookie-file", cookie, "-f", file, "-scope", "4"},
		&stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "question_set 101\n", stdout.String())
	assert.Len(t, api.paths(), 5)
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "usage:"))

	err = run(context.Background(), []string{"push", "-server", "http://localhost"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-f is required")

	err = run(context.Background(), []string{"push", "-f", "set.yaml", "-scope", "-2"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid -scope")
}
