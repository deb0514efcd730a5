package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/store"
)

// PostgresVocabularyStore implements store.VocabularyStore.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a vocabulary store on db.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// Get implements store.VocabularyStore.
func (s *PostgresVocabularyStore) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.VocabularySet, error) {
	var vs domain.VocabularySet
	err := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(class_id, 0), owner_id, title, description, level, created_at, updated_at
		FROM vocabulary_sets
		WHERE id = $1 AND owner_id = $2`, id, ownerID).
		Scan(&vs.ID, &vs.ClassID, &vs.OwnerID, &vs.Title, &vs.Description, &vs.Level, &vs.CreatedAt, &vs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrVocabularySetNotFound
	}
	if err != nil {
		s.logger.Error("failed to get vocabulary set", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vocabulary_set_id, position, term, romanization, meaning, example
		FROM vocabulary_items
		WHERE vocabulary_set_id = $1
		ORDER BY position, id`, id)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	vs.Items = []domain.VocabularyItem{}
	for rows.Next() {
		var it domain.VocabularyItem
		if err := rows.Scan(&it.ID, &it.VocabularySetID, &it.Position, &it.Term,
			&it.Romanization, &it.Meaning, &it.Example); err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary item: %w", err)
		}
		vs.Items = append(vs.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return &vs, nil
}

// Create implements store.VocabularyStore.
func (s *PostgresVocabularyStore) Create(ctx context.Context, ownerID uuid.UUID, classID int64, f domain.VocabularySetFields) (int64, error) {
	return insertOwned(ctx, s.db, s.logger, "create_vocabulary_set", store.ErrClassNotFound, `
		INSERT INTO vocabulary_sets (owner_id, class_id, title, description, level)
		SELECT $1, $2, $3, $4, $5
		WHERE $2::bigint IS NULL
		   OR EXISTS (SELECT 1 FROM classes WHERE id = $2 AND owner_id = $1)
		RETURNING id`,
		ownerID, nullableID(classID), f.Title, f.Description, f.Level)
}

// Update implements store.VocabularyStore.
func (s *PostgresVocabularyStore) Update(ctx context.Context, ownerID uuid.UUID, id int64, f domain.VocabularySetFields) error {
	return execOwned(ctx, s.db, s.logger, "update_vocabulary_set", store.ErrVocabularySetNotFound, `
		UPDATE vocabulary_sets
		SET title = $3, description = $4, level = $5, updated_at = NOW()
		WHERE id = $2 AND owner_id = $1`,
		ownerID, id, f.Title, f.Description, f.Level)
}

// CreateItem implements store.VocabularyStore.
func (s *PostgresVocabularyStore) CreateItem(ctx context.Context, ownerID uuid.UUID, setID int64, position int, f domain.VocabularyItemFields) (int64, error) {
	return insertOwned(ctx, s.db, s.logger, "create_vocabulary_item", store.ErrVocabularySetNotFound, `
		INSERT INTO vocabulary_items (vocabulary_set_id, position, term, romanization, meaning, example)
		SELECT vs.id, $3, $4, $5, $6, $7
		FROM vocabulary_sets vs
		WHERE vs.id = $2 AND vs.owner_id = $1
		RETURNING id`,
		ownerID, setID, position, f.Term, f.Romanization, f.Meaning, f.Example)
}

// UpdateItem implements store.VocabularyStore.
func (s *PostgresVocabularyStore) UpdateItem(ctx context.Context, ownerID uuid.UUID, id int64, position int, f domain.VocabularyItemFields) error {
	return execOwned(ctx, s.db, s.logger, "update_vocabulary_item", store.ErrVocabularyItemNotFound, `
		UPDATE vocabulary_items vi
		SET position = $3, term = $4, romanization = $5, meaning = $6, example = $7
		FROM vocabulary_sets vs
		WHERE vi.id = $2 AND vi.vocabulary_set_id = vs.id AND vs.owner_id = $1`,
		ownerID, id, position, f.Term, f.Romanization, f.Meaning, f.Example)
}

// DeleteItem implements store.VocabularyStore.
func (s *PostgresVocabularyStore) DeleteItem(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return execOwned(ctx, s.db, s.logger, "delete_vocabulary_item", store.ErrVocabularyItemNotFound, `
		DELETE FROM vocabulary_items vi
		USING vocabulary_sets vs
		WHERE vi.id = $2 AND vi.vocabulary_set_id = vs.id AND vs.owner_id = $1`,
		ownerID, id)
}
