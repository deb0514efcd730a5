package sdk

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Route is one entry of the endpoint catalog. Path segments written as
// {name} are filled from the request parameters.
type Route struct {
	Method string
	Path   string
}

// Params holds path parameter values by name.
type Params map[string]string

// ID is a shorthand for Params{"id": ...}.
func ID(id int64) Params {
	return Params{"id": fmt.Sprint(id)}
}

// Endpoint names understood by DefaultEndpoints.
const (
	Health = "health"

	ListQuestionSets   = "question_sets.list"
	CreateQuestionSet  = "question_sets.create"
	GetQuestionSet     = "question_sets.get"
	UpdateQuestionSet  = "question_sets.update"
	DeleteQuestionSet  = "question_sets.delete"
	CreateQuestion     = "questions.create"
	UpdateQuestion     = "questions.update"
	DeleteQuestion     = "questions.delete"
	CreateAnswerOption = "options.create"
	UpdateAnswerOption = "options.update"
	DeleteAnswerOption = "options.delete"

	CreateVocabularySet  = "vocabulary_sets.create"
	GetVocabularySet     = "vocabulary_sets.get"
	UpdateVocabularySet  = "vocabulary_sets.update"
	CreateVocabularyItem = "vocabulary_items.create"
	UpdateVocabularyItem = "vocabulary_items.update"
	DeleteVocabularyItem = "vocabulary_items.delete"

	CreateClass          = "classes.create"
	GetClass             = "classes.get"
	UpdateClass          = "classes.update"
	CreateLesson         = "lessons.create"
	UpdateLesson         = "lessons.update"
	DeleteLesson         = "lessons.delete"
	CreateLessonMaterial = "lesson_materials.create"
	UpdateLessonMaterial = "lesson_materials.update"
	DeleteLessonMaterial = "lesson_materials.delete"

	LikePost   = "posts.like"
	UnlikePost = "posts.unlike"
)

// DefaultEndpoints is the catalog of the Hangeul Lab API.
var DefaultEndpoints = map[string]Route{
	Health: {http.MethodGet, "/health"},

	ListQuestionSets:   {http.MethodGet, "/api/question-sets"},
	CreateQuestionSet:  {http.MethodPost, "/api/question-sets"},
	GetQuestionSet:     {http.MethodGet, "/api/question-sets/{id}"},
	UpdateQuestionSet:  {http.MethodPut, "/api/question-sets/{id}"},
	DeleteQuestionSet:  {http.MethodDelete, "/api/question-sets/{id}"},
	CreateQuestion:     {http.MethodPost, "/api/question-sets/{id}/questions"},
	UpdateQuestion:     {http.MethodPut, "/api/questions/{id}"},
	DeleteQuestion:     {http.MethodDelete, "/api/questions/{id}"},
	CreateAnswerOption: {http.MethodPost, "/api/questions/{id}/options"},
	UpdateAnswerOption: {http.MethodPut, "/api/options/{id}"},
	DeleteAnswerOption: {http.MethodDelete, "/api/options/{id}"},

	CreateVocabularySet:  {http.MethodPost, "/api/vocabulary-sets"},
	GetVocabularySet:     {http.MethodGet, "/api/vocabulary-sets/{id}"},
	UpdateVocabularySet:  {http.MethodPut, "/api/vocabulary-sets/{id}"},
	CreateVocabularyItem: {http.MethodPost, "/api/vocabulary-sets/{id}/items"},
	UpdateVocabularyItem: {http.MethodPut, "/api/vocabulary-items/{id}"},
	DeleteVocabularyItem: {http.MethodDelete, "/api/vocabulary-items/{id}"},

	CreateClass:          {http.MethodPost, "/api/classes"},
	GetClass:             {http.MethodGet, "/api/classes/{id}"},
	UpdateClass:          {http.MethodPut, "/api/classes/{id}"},
	CreateLesson:         {http.MethodPost, "/api/classes/{id}/lessons"},
	UpdateLesson:         {http.MethodPut, "/api/lessons/{id}"},
	DeleteLesson:         {http.MethodDelete, "/api/lessons/{id}"},
	CreateLessonMaterial: {http.MethodPost, "/api/lessons/{id}/materials"},
	UpdateLessonMaterial: {http.MethodPut, "/api/lesson-materials/{id}"},
	DeleteLessonMaterial: {http.MethodDelete, "/api/lesson-materials/{id}"},

	LikePost:   {http.MethodPost, "/api/posts/{id}/like"},
	UnlikePost: {http.MethodDelete, "/api/posts/{id}/like"},
}

// expand fills the path template of r.
func (r Route) expand(params Params) (string, error) {
	var b strings.Builder
	rest := r.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("sdk: malformed route %q", r.Path)
		}
		name := rest[open+1 : open+end]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%w: %s in %s", ErrMissingParam, name, r.Path)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}
}
