package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/draft"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

// LikeToggle is the like button of a discussion post. Toggle updates the
// counter at once and rolls it back if the server call fails.
type LikeToggle struct {
	client Caller
	logger *slog.Logger

	mu      sync.Mutex
	state   domain.PostLikes
	version uint64
	err     error
}

// NewLikeToggle starts from the state the page was rendered with.
func NewLikeToggle(client Caller, initial domain.PostLikes, logger *slog.Logger) *LikeToggle {
	if logger == nil {
		logger = slog.Default()
	}
	return &LikeToggle{
		client: client,
		logger: logger.With(slog.String("component", "like_toggle"), slog.Int64("post_id", initial.PostID)),
		state:  initial,
	}
}

// State returns the counter as currently shown.
func (l *LikeToggle) State() domain.PostLikes {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the failure of the last toggle, if it failed.
func (l *LikeToggle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Toggle flips the like. Only the newest toggle may write back, so a slow
// response never overwrites a later click.
func (l *LikeToggle) Toggle(ctx context.Context) error {
	l.mu.Lock()
	prev := l.state
	next := prev
	next.Liked = !prev.Liked
	if next.Liked {
		next.LikeCount++
	} else if next.LikeCount > 0 {
		next.LikeCount--
	}
	l.state = next
	l.err = nil
	l.version++
	version := l.version
	l.mu.Unlock()

	endpoint := sdk.UnlikePost
	if next.Liked {
		endpoint = sdk.LikePost
	}

	var out sdk.Envelope[domain.PostLikes]
	err := l.client.Do(ctx, endpoint, sdk.ID(prev.PostID), nil, &out)
	if err == nil && !out.Success {
		err = errors.New("like rejected: " + out.Error)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.version != version {
		return err
	}
	if err != nil {
		l.state = prev
		l.err = err
		l.logger.WarnContext(ctx, "like toggle failed, rolled back",
			"liked", next.Liked,
			"error", err.Error())
		return err
	}
	if out.Data.PostID == prev.PostID {
		l.state = out.Data
	}
	return nil
}

// Retry repeats the toggle that failed last.
func (l *LikeToggle) Retry(ctx context.Context) error {
	if l.Err() == nil {
		return draft.ErrNothingToRetry
	}
	return l.Toggle(ctx)
}
