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

// PostgresQuestionSetStore implements store.QuestionSetStore.
type PostgresQuestionSetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionSetStore creates a question set store on db, which may
// be a *sql.DB or a *sql.Tx. If logger is nil, the default logger is used.
func NewPostgresQuestionSetStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionSetStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuestionSetStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_set_store")),
	}
}

var _ store.QuestionSetStore = (*PostgresQuestionSetStore)(nil)

const questionSetColumns = `id, COALESCE(class_id, 0), owner_id, title, description, instructions,
	time_limit_minutes, shuffle, created_at, updated_at`

func scanQuestionSet(row interface{ Scan(...any) error }) (domain.QuestionSet, error) {
	var qs domain.QuestionSet
	err := row.Scan(&qs.ID, &qs.ClassID, &qs.OwnerID, &qs.Title, &qs.Description, &qs.Instructions,
		&qs.TimeLimitMinutes, &qs.Shuffle, &qs.CreatedAt, &qs.UpdatedAt)
	return qs, err
}

// List implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) List(ctx context.Context, ownerID uuid.UUID) ([]domain.QuestionSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+questionSetColumns+`
		FROM question_sets
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		s.logger.Error("failed to list question sets", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer rows.Close()

	sets := []domain.QuestionSet{}
	for rows.Next() {
		qs, err := scanQuestionSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question set: %w", err)
		}
		qs.Questions = []domain.Question{}
		sets = append(sets, qs)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return sets, nil
}

// Get implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.QuestionSet, error) {
	qs, err := scanQuestionSet(s.db.QueryRowContext(ctx, `
		SELECT `+questionSetColumns+`
		FROM question_sets
		WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrQuestionSetNotFound
	}
	if err != nil {
		s.logger.Error("failed to get question set", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	questions, err := s.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	qs.Questions = questions
	return &qs, nil
}

func (s *PostgresQuestionSetStore) questions(ctx context.Context, setID int64) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_set_id, position, prompt, kind, explanation, points, answer
		FROM questions
		WHERE question_set_id = $1
		ORDER BY position, id`, setID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	index := map[int64]int{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuestionSetID, &q.Position, &q.Prompt, &q.Kind,
			&q.Explanation, &q.Points, &q.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.Options = []domain.AnswerOption{}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	if len(questions) == 0 {
		return questions, nil
	}

	optRows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.position, o.text, o.is_correct
		FROM answer_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.question_set_id = $1
		ORDER BY o.position, o.id`, setID)
	if err != nil {
		return nil, MapError(err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var o domain.AnswerOption
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Position, &o.Text, &o.IsCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan answer option: %w", err)
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, MapError(err)
	}
	return questions, nil
}

// Create implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) Create(ctx context.Context, ownerID uuid.UUID, classID int64, f domain.QuestionSetFields) (int64, error) {
	return insertOwned(ctx, s.db, s.logger, "create_question_set", store.ErrClassNotFound, `
		INSERT INTO question_sets (owner_id, class_id, title, description, instructions, time_limit_minutes, shuffle)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE $2::bigint IS NULL
		   OR EXISTS (SELECT 1 FROM classes WHERE id = $2 AND owner_id = $1)
		RETURNING id`,
		ownerID, nullableID(classID), f.Title, f.Description, f.Instructions, f.TimeLimitMinutes, f.Shuffle)
}

// Update implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) Update(ctx context.Context, ownerID uuid.UUID, id int64, f domain.QuestionSetFields) error {
	return execOwned(ctx, s.db, s.logger, "update_question_set", store.ErrQuestionSetNotFound, `
		UPDATE question_sets
		SET title = $3, description = $4, instructions = $5, time_limit_minutes = $6, shuffle = $7,
		    updated_at = NOW()
		WHERE id = $2 AND owner_id = $1`,
		ownerID, id, f.Title, f.Description, f.Instructions, f.TimeLimitMinutes, f.Shuffle)
}

// Delete implements store.QuestionSetStore. Questions and options go with it.
func (s *PostgresQuestionSetStore) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return execOwned(ctx, s.db, s.logger, "delete_question_set", store.ErrQuestionSetNotFound,
		`DELETE FROM question_sets WHERE id = $2 AND owner_id = $1`, ownerID, id)
}

// CreateQuestion implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) CreateQuestion(ctx context.Context, ownerID uuid.UUID, setID int64, position int, f domain.QuestionFields) (int64, error) {
	return insertOwned(ctx, s.db, s.logger, "create_question", store.ErrQuestionSetNotFound, `
		INSERT INTO questions (question_set_id, position, prompt, kind, explanation, points, answer)
		SELECT qs.id, $3, $4, $5, $6, $7, $8
		FROM question_sets qs
		WHERE qs.id = $2 AND qs.owner_id = $1
		RETURNING id`,
		ownerID, setID, position, f.Prompt, string(f.Kind), f.Explanation, f.Points, f.Answer)
}

// UpdateQuestion implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) UpdateQuestion(ctx context.Context, ownerID uuid.UUID, id int64, position int, f domain.QuestionFields) error {
	return execOwned(ctx, s.db, s.logger, "update_question", store.ErrQuestionNotFound, `
		UPDATE questions q
		SET position = $3, prompt = $4, kind = $5, explanation = $6, points = $7, answer = $8
		FROM question_sets qs
		WHERE q.id = $2 AND q.question_set_id = qs.id AND qs.owner_id = $1`,
		ownerID, id, position, f.Prompt, string(f.Kind), f.Explanation, f.Points, f.Answer)
}

// DeleteQuestion implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) DeleteQuestion(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return execOwned(ctx, s.db, s.logger, "delete_question", store.ErrQuestionNotFound, `
		DELETE FROM questions q
		USING question_sets qs
		WHERE q.id = $2 AND q.question_set_id = qs.id AND qs.owner_id = $1`,
		ownerID, id)
}

// CreateOption implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) CreateOption(ctx context.Context, ownerID uuid.UUID, questionID int64, position int, f domain.AnswerOptionFields) (int64, error) {
	return insertOwned(ctx, s.db, s.logger, "create_option", store.ErrQuestionNotFound, `
		INSERT INTO answer_options (question_id, position, text, is_correct)
		SELECT q.id, $3, $4, $5
		FROM questions q
		JOIN question_sets qs ON qs.id = q.question_set_id
		WHERE q.id = $2 AND qs.owner_id = $1
		RETURNING id`,
		ownerID, questionID, position, f.Text, f.IsCorrect)
}

// UpdateOption implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) UpdateOption(ctx context.Context, ownerID uuid.UUID, id int64, position int, f domain.AnswerOptionFields) error {
	return execOwned(ctx, s.db, s.logger, "update_option", store.ErrAnswerOptionNotFound, `
		UPDATE answer_options o
		SET position = $3, text = $4, is_correct = $5
		FROM questions q
		JOIN question_sets qs ON qs.id = q.question_set_id
		WHERE o.id = $2 AND o.question_id = q.id AND qs.owner_id = $1`,
		ownerID, id, position, f.Text, f.IsCorrect)
}

// DeleteOption implements store.QuestionSetStore.
func (s *PostgresQuestionSetStore) DeleteOption(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return execOwned(ctx, s.db, s.logger, "delete_option", store.ErrAnswerOptionNotFound, `
		DELETE FROM answer_options o
		USING questions q, question_sets qs
		WHERE o.id = $2 AND o.question_id = q.id AND q.question_set_id = qs.id AND qs.owner_id = $1`,
		ownerID, id)
}
