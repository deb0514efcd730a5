package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/store"
)

// Conn is a database handle that can also start transactions.
type Conn interface {
	store.DBTX
	store.TxBeginner
}

// PostgresPostStore implements store.PostStore.
type PostgresPostStore struct {
	db     Conn
	logger *slog.Logger
}

// NewPostgresPostStore creates a post store on db. Like and Unlike run in
// their own transaction, so db must be a *sql.DB rather than a *sql.Tx.
func NewPostgresPostStore(db Conn, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

var _ store.PostStore = (*PostgresPostStore)(nil)

// Like implements store.PostStore.
func (s *PostgresPostStore) Like(ctx context.Context, userID uuid.UUID, postID int64) (domain.PostLikes, error) {
	return s.toggle(ctx, postID, true,
		`INSERT INTO post_likes (post_id, user_id)
		SELECT id, $2 FROM posts WHERE id = $1
		ON CONFLICT DO NOTHING`,
		`UPDATE posts SET like_count = like_count + 1 WHERE id = $1 RETURNING like_count`,
		userID)
}

// Unlike implements store.PostStore.
func (s *PostgresPostStore) Unlike(ctx context.Context, userID uuid.UUID, postID int64) (domain.PostLikes, error) {
	return s.toggle(ctx, postID, false,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		`UPDATE posts SET like_count = GREATEST(like_count - 1, 0) WHERE id = $1 RETURNING like_count`,
		userID)
}

// toggle runs change and, when it touched a row, bump. Otherwise the
// current count is read back so a repeated like or unlike is a no-op.
func (s *PostgresPostStore) toggle(ctx context.Context, postID int64, liked bool, change, bump string, userID uuid.UUID) (domain.PostLikes, error) {
	state := domain.PostLikes{PostID: postID, Liked: liked}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, change, postID, userID)
		if err != nil {
			return MapError(err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return MapError(err)
		}

		query := bump
		if n == 0 {
			query = `SELECT like_count FROM posts WHERE id = $1`
		}
		err = tx.QueryRowContext(ctx, query, postID).Scan(&state.LikeCount)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrPostNotFound
		}
		return MapError(err)
	})
	if err != nil {
		if !errors.Is(err, store.ErrPostNotFound) {
			s.logger.Error("failed to update post likes",
				slog.Int64("post_id", postID),
				slog.Bool("liked", liked),
				slog.String("error", err.Error()))
		}
		return domain.PostLikes{}, err
	}
	return state, nil
}
