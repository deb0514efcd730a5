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

// PostgresClassStore implements store.ClassStore.
type PostgresClassStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresClassStore creates a class store on db.
func NewPostgresClassStore(db store.DBTX, logger *slog.Logger) *PostgresClassStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClassStore{
		db:     db,
		logger: logger.With(slog.String("component", "class_store")),
	}
}

var _ store.ClassStore = (*PostgresClassStore)(nil)

// Get implements store.ClassStore.
func (s *PostgresClassStore) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Class, error) {
	var c domain.Class
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, level, visibility, created_at, updated_at
		FROM classes
		WHERE id = $1 AND owner_id = $2`, id, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Level, &c.Visibility, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrClassNotFound
	}
	if err != nil {
		s.logger.Error("failed to get class", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	lessons, err := s.lessons(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Lessons = lessons
	return &c, nil
}

func (s *PostgresClassStore) lessons(ctx context.Context, classID int64) ([]domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, class_id, position, title, summary
		FROM lessons
		WHERE class_id = $1
		ORDER BY position, id`, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	lessons := []domain.Lesson{}
	index := map[int64]int{}
	for rows.Next() {
		var l domain.Lesson
		if err := rows.Scan(&l.ID, &l.ClassID, &l.Position, &l.Title, &l.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		l.Materials = []domain.LessonMaterial{}
		index[l.ID] = len(lessons)
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	if len(lessons) == 0 {
		return lessons, nil
	}

	matRows, err := s.db.QueryContext(ctx, `
		SELECT lm.id, lm.lesson_id, lm.position, lm.material_id, lm.note, lm.required
		FROM lesson_materials lm
		JOIN lessons l ON l.id = lm.lesson_id
		WHERE l.class_id = $1
		ORDER BY lm.position, lm.id`, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer matRows.Close()

	for matRows.Next() {
		var m domain.LessonMaterial
		if err := matRows.Scan(&m.ID, &m.LessonID, &m.Position, &m.MaterialID, &m.Note, &m.Required); err != nil {
			return nil, fmt.Errorf("failed to scan lesson material: %w", err)
		}
		if i, ok := index[m.LessonID]; ok {
			lessons[i].Materials = append(lessons[i].Materials, m)
		}
	}
	if err := matRows.Err(); err != nil {
		return nil, MapError(err)
	}
	return lessons, nil
}

// Create implements store.ClassStore.
func (s *PostgresClassStore) Create(ctx context.Context, ownerID uuid.UUID, f domain.ClassFields) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO classes (owner_id, title, description, level, visibility)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		ownerID, f.Title, f.Description, f.Level, string(f.Visibility)).Scan(&id)
	if err != nil {
		s.logger.Error("failed to create class", slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return id, nil
}

// Update implements store.ClassStore.
func (s *PostgresClassStore) Update(ctx context.Context, ownerID uuid.UUID, id int64, f domain.ClassFields) error {
	return execOwned(ctx, s.db, s.logger, "update_class", store.ErrClassNotFound, `
		UPDATE classes
		SET title = $3, description = $4, level = $5, visibility = $6, updated_at = NOW()
		WHERE id = $2 AND owner_id = $1`,
		ownerID, id, f.Title, f.Description, f.Level, string(f.Visibility))
}

// CreateLesson implements store.ClassStore.
func (s *PostgresClassStore) CreateLesson(ctx context.Context, ownerID uuid.UUID, classID int64, position int, f domain.LessonFields) (int64, error) {
	return insertOwned(ctx, s.db, s.logger, "create_lesson", store.ErrClassNotFound, `
		INSERT INTO lessons (class_id, position, title, summary)
		SELECT c.id, $3, $4, $5
		FROM classes c
		WHERE c.id = $2 AND c.owner_id = $1
		RETURNING id`,
		ownerID, classID, position, f.Title, f.Summary)
}

// UpdateLesson implements store.ClassStore.
func (s *PostgresClassStore) UpdateLesson(ctx context.Context, ownerID uuid.UUID, id int64, position int, f domain.LessonFields) error {
	return execOwned(ctx, s.db, s.logger, "update_lesson", store.ErrLessonNotFound, `
		UPDATE lessons l
		SET position = $3, title = $4, summary = $5, updated_at = NOW()
		FROM classes c
		WHERE l.id = $2 AND l.class_id = c.id AND c.owner_id = $1`,
		ownerID, id, position, f.Title, f.Summary)
}

// DeleteLesson implements store.ClassStore. Attached materials go with it.
func (s *PostgresClassStore) DeleteLesson(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return execOwned(ctx, s.db, s.logger, "delete_lesson", store.ErrLessonNotFound, `
		DELETE FROM lessons l
		USING classes c
		WHERE l.id = $2 AND l.class_id = c.id AND c.owner_id = $1`,
		ownerID, id)
}

// CreateMaterial implements store.ClassStore.
func (s *PostgresClassStore) CreateMaterial(ctx context.Context, ownerID uuid.UUID, lessonID int64, position int, f domain.LessonMaterialFields) (int64, error) {
	id, err := insertOwned(ctx, s.db, s.logger, "create_lesson_material", store.ErrLessonNotFound, `
		INSERT INTO lesson_materials (lesson_id, position, material_id, note, required)
		SELECT l.id, $3, $4, $5, $6
		FROM lessons l
		JOIN classes c ON c.id = l.class_id
		WHERE l.id = $2 AND c.owner_id = $1
		RETURNING id`,
		ownerID, lessonID, position, f.MaterialID, f.Note, f.Required)
	if IsForeignKeyViolation(err) {
		return 0, store.ErrMaterialNotFound
	}
	return id, err
}

// UpdateMaterial implements store.ClassStore.
func (s *PostgresClassStore) UpdateMaterial(ctx context.Context, ownerID uuid.UUID, id int64, position int, f domain.LessonMaterialFields) error {
	err := execOwned(ctx, s.db, s.logger, "update_lesson_material", store.ErrLessonMaterialNotFound, `
		UPDATE lesson_materials lm
		SET position = $3, material_id = $4, note = $5, required = $6
		FROM lessons l
		JOIN classes c ON c.id = l.class_id
		WHERE lm.id = $2 AND lm.lesson_id = l.id AND c.owner_id = $1`,
		ownerID, id, position, f.MaterialID, f.Note, f.Required)
	if IsForeignKeyViolation(err) {
		return store.ErrMaterialNotFound
	}
	return err
}

// DeleteMaterial implements store.ClassStore.
func (s *PostgresClassStore) DeleteMaterial(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return execOwned(ctx, s.db, s.logger, "delete_lesson_material", store.ErrLessonMaterialNotFound, `
		DELETE FROM lesson_materials lm
		USING lessons l, classes c
		WHERE lm.id = $2 AND lm.lesson_id = l.id AND l.class_id = c.id AND c.owner_id = $1`,
		ownerID, id)
}
