package api

import "github.com/hangeul-lab/authoring/internal/domain"

// QuestionSetRequest is the body of question set create and update calls.
// ClassID is only read on create.
type QuestionSetRequest struct {
	ClassID int64 `json:"class_id" validate:"gte=0"`
	domain.QuestionSetFields
}

// QuestionRequest is the body of question create and update calls.
type QuestionRequest struct {
	Position int `json:"position" validate:"gte=0"`
	domain.QuestionFields
}

// AnswerOptionRequest is the body of answer option create and update calls.
type AnswerOptionRequest struct {
	Position int `json:"position" validate:"gte=0"`
	domain.AnswerOptionFields
}

// VocabularySetRequest is the body of vocabulary set create and update
// calls. ClassID is only read on create.
type VocabularySetRequest struct {
	ClassID int64 `json:"class_id" validate:"gte=0"`
	domain.VocabularySetFields
}

// VocabularyItemRequest is the body of vocabulary item create and update
// calls.
type VocabularyItemRequest struct {
	Position int `json:"position" validate:"gte=0"`
	domain.VocabularyItemFields
}

// ClassRequest is the body of class create and update calls.
type ClassRequest struct {
	domain.ClassFields
}

// LessonRequest is the body of lesson create and update calls.
type LessonRequest struct {
	Position int `json:"position" validate:"gte=0"`
	domain.LessonFields
}

// LessonMaterialRequest is the body of lesson material create and update
// calls.
type LessonMaterialRequest struct {
	Position int `json:"position" validate:"gte=0"`
	domain.LessonMaterialFields
}
