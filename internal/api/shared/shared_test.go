package shared

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	ctx := SetTraceID(context.Background())
	first := GetTraceID(ctx)
	require.NotEmpty(t, first)

	_, err := ulid.ParseStrict(first)
	assert.NoError(t, err, "trace id should be a ULID")

	second := NewTraceID()
	assert.NotEqual(t, first, second)
	assert.Less(t, first, second, "ULIDs from one process sort in creation order")

	assert.Empty(t, GetTraceID(context.Background()))
	assert.Equal(t, "abc", GetTraceID(WithTraceID(context.Background(), "abc")))
}

func TestUserID(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	_, ok = UserID(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok, "nil user id is not an authenticated user")

	id := uuid.New()
	got, ok := UserID(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

type sampleRequest struct {
	Title string `json:"title" validate:"required,max=5"`
	Level int    `json:"level"`
}

func (r sampleRequest) Validate() error {
	if r.Level < 0 {
		return errors.New("level must not be negative")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		want    sampleRequest
	}{
		{name: "valid", body: `{"title":"가나","level":2}`, want: sampleRequest{Title: "가나", Level: 2}},
		{name: "unknown fields ignored", body: `{"title":"a","extra":true}`, want: sampleRequest{Title: "a"}},
		{name: "empty", body: ``, wantErr: ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got sampleRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
		var got sampleRequest
		assert.ErrorContains(t, DecodeJSON(httptest.NewRecorder(), req, &got), "invalid request body")
	})
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Title: "ok"}))
	assert.Error(t, ValidateRequest(sampleRequest{}), "struct tags are checked")
	assert.Error(t, ValidateRequest(sampleRequest{Title: "too long"}))
	assert.EqualError(t, ValidateRequest(sampleRequest{Title: "ok", Level: -1}), "level must not be negative")
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondWithID(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithID(w, httptest.NewRequest(http.MethodPost, "/", nil), http.StatusCreated, 42)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":42}}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	ctx := WithTraceID(context.Background(), "01TRACE")
	req := httptest.NewRequest(http.MethodGet, "/api/question-sets/1", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	secret := errors.New(`pq: relation "question_sets" at postgres://admin:hunter2@db:5432`)
	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "internal", "An unexpected error occurred", secret)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "An unexpected error occurred", body["error"])
	assert.Equal(t, "internal", body["code"])
	assert.Equal(t, "01TRACE", body["trace_id"])
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "question_sets")
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusUnauthorized, "unauthorized", "Invalid token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid token","code":"unauthorized"}`, w.Body.String())
}
