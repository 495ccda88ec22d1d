package storage

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/eduapps/quizvault/models"
)

// Typed convenience wrappers over the generic collection API.

func (db *DB) PutQuiz(q *models.Quiz) error {
	return db.Put(CollQuizzes, q.ID, q)
}

func (db *DB) QuizByID(id string) (*models.Quiz, error) {
	var q models.Quiz
	if err := db.Get(CollQuizzes, id, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (db *DB) QuizzesByCourse(courseID string) ([]models.Quiz, error) {
	docs, err := db.GetByIndex(CollQuizzes, "course_id", courseID)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Quiz](docs)
}

func (db *DB) PutQuestion(q *models.Question) error {
	return db.Put(CollQuestions, q.ID, q)
}

// QuestionsByQuiz returns a quiz's questions in position order.
func (db *DB) QuestionsByQuiz(quizID string) ([]models.Question, error) {
	docs, err := db.GetByIndex(CollQuestions, "quiz_id", quizID)
	if err != nil {
		return nil, err
	}
	questions, err := decodeAll[models.Question](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Position < questions[j].Position
	})
	return questions, nil
}

func (db *DB) PutCourse(c *models.Course) error {
	return db.Put(CollCourses, c.ID, c)
}

func (db *DB) Courses() ([]models.Course, error) {
	docs, err := db.GetAll(CollCourses)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Course](docs)
}

// PutProgress mirrors a progress record into the structured store,
// keyed by (user, quiz) so one row exists per pair.
func (db *DB) PutProgress(rec *models.ProgressRecord) error {
	return db.Put(CollProgress, rec.UserID+":"+rec.QuizID, rec)
}

func (db *DB) ProgressByUser(userID string) ([]models.ProgressRecord, error) {
	docs, err := db.GetByIndex(CollProgress, "user_id", userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.ProgressRecord](docs)
}

func (db *DB) ProgressForQuiz(userID, quizID string) (*models.ProgressRecord, error) {
	docs, err := db.GetByIndex(CollProgress, "user_quiz", userID, quizID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	var rec models.ProgressRecord
	if err := json.Unmarshal(docs[0], &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize progress record: %w", err)
	}
	return &rec, nil
}

func (db *DB) PutAttempt(a *models.Attempt) error {
	return db.Put(CollAttempts, a.ID, a)
}

func (db *DB) AttemptsByUser(userID string) ([]models.Attempt, error) {
	docs, err := db.GetByIndex(CollAttempts, "user_id", userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Attempt](docs)
}

func (db *DB) AttemptsByQuiz(quizID string) ([]models.Attempt, error) {
	docs, err := db.GetByIndex(CollAttempts, "quiz_id", quizID)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Attempt](docs)
}

// PutSetting stores an app setting as a JSON value under key.
func (db *DB) PutSetting(key string, value interface{}) error {
	return db.Put(CollSettings, key, map[string]interface{}{"value": value})
}

// Setting loads the app setting under key into out.
func (db *DB) Setting(key string, out interface{}) error {
	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if err := db.Get(CollSettings, key, &wrapper); err != nil {
		return err
	}
	if err := json.Unmarshal(wrapper.Value, out); err != nil {
		return fmt.Errorf("failed to deserialize setting %s: %w", key, err)
	}
	return nil
}

func decodeAll[T any](docs []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("failed to deserialize record: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
