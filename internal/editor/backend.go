package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hangeul-lab/authoring/internal/draft"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

// Caller issues API requests. *sdk.Client implements it.
type Caller interface {
	Do(ctx context.Context, endpoint string, params sdk.Params, body, out any) error
}

var _ Caller = (*sdk.Client)(nil)

// Config tunes editor sessions.
type Config struct {
	// Debounce is the autosave quiet period.
	Debounce time.Duration
	// SettleAfter is how long the saved status is shown.
	SettleAfter time.Duration
	Logger      *slog.Logger
}

func (c Config) storeOptions() []draft.Option {
	opts := []draft.Option{}
	if c.SettleAfter > 0 {
		opts = append(opts, draft.WithSettleAfter(c.SettleAfter))
	}
	if c.Logger != nil {
		opts = append(opts, draft.WithLogger(c.Logger))
	}
	return opts
}

func (c Config) sessionOptions() []draft.SessionOption {
	opts := []draft.SessionOption{}
	if c.Debounce > 0 {
		opts = append(opts, draft.WithDebounce(c.Debounce))
	}
	if c.Logger != nil {
		opts = append(opts, draft.WithSessionLogger(c.Logger))
	}
	return opts
}

// save issues a create or update and converts the response into a draft
// envelope. Rejections by the server are business failures; anything else
// is a transport fault.
func save(ctx context.Context, c Caller, endpoint string, params sdk.Params, body any) (draft.Envelope, error) {
	var out sdk.Envelope[sdk.IDData]
	if err := c.Do(ctx, endpoint, params, body, &out); err != nil {
		var apiErr *sdk.APIError
		if errors.As(err, &apiErr) {
			return draft.Envelope{Success: false, Error: apiErr.Message}, nil
		}
		return draft.Envelope{}, err
	}
	if !out.Success {
		return draft.Envelope{Success: false, Error: out.Error}, nil
	}
	return draft.Envelope{Success: true, ID: draft.ServerID(out.Data.ID)}, nil
}

// remove issues a delete. A record that is already gone counts as deleted,
// so a delete repeated after a lost response is harmless.
func remove(ctx context.Context, c Caller, endpoint string, id draft.ServerID) (draft.Envelope, error) {
	err := c.Do(ctx, endpoint, sdk.ID(int64(id)), nil, nil)
	switch {
	case err == nil, sdk.IsStatus(err, http.StatusNotFound):
		return draft.Envelope{Success: true, ID: id}, nil
	}
	var apiErr *sdk.APIError
	if errors.As(err, &apiErr) {
		return draft.Envelope{Success: false, Error: apiErr.Message}, nil
	}
	return draft.Envelope{}, err
}

// upsert picks the create or update endpoint from the record's identity.
func upsert(
	ctx context.Context,
	c Caller,
	existing draft.Ident,
	createEndpoint string,
	ownerID int64,
	updateEndpoint string,
	body any,
) (draft.Envelope, error) {
	if sid, ok := draft.AsServerID(existing); ok {
		return save(ctx, c, updateEndpoint, sdk.ID(int64(sid)), body)
	}
	var params sdk.Params
	if ownerID != 0 {
		params = sdk.ID(ownerID)
	}
	return save(ctx, c, createEndpoint, params, body)
}

// fetch loads a record through a GET endpoint.
func fetch[T any](ctx context.Context, c Caller, endpoint string, id int64) (T, error) {
	var out sdk.Envelope[T]
	if err := c.Do(ctx, endpoint, sdk.ID(id), nil, &out); err != nil {
		var zero T
		return zero, err
	}
	if !out.Success {
		var zero T
		return zero, fmt.Errorf("load %s %d: %s", endpoint, id, out.Error)
	}
	return out.Data, nil
}
