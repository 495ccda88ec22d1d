package models

import "time"

// Quiz is a cached quiz description.
type Quiz struct {
	ID               string    `json:"id"`
	CourseID         string    `json:"course_id"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	Difficulty       string    `json:"difficulty"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	QuestionCount    int       `json:"question_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Question is a cached quiz question.
type Question struct {
	ID           string   `json:"id"`
	QuizID       string   `json:"quiz_id"`
	Position     int      `json:"position"`
	QuestionType string   `json:"question_type"` // open_text, multiple_choice, true_false, multiple_select
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices,omitempty"`
	Answer       string   `json:"answer"`
	Points       int      `json:"points"`
}

// Attempt is a finished (or abandoned) quiz attempt.
type Attempt struct {
	ID         string                 `json:"id"`
	QuizID     string                 `json:"quiz_id"`
	UserID     string                 `json:"user_id"`
	Answers    map[string]interface{} `json:"answers"`
	Score      float64                `json:"score"`
	Completed  bool                   `json:"completed"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}

// Course groups quizzes for display.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QuizContent is the render-ready bundle cached for a quiz: the quiz
// itself plus its questions in position order.
type QuizContent struct {
	Quiz      Quiz       `json:"quiz"`
	Questions []Question `json:"questions"`
}

// StorageInfo is an aggregate report over the structured store.
type StorageInfo struct {
	Collections  map[string]int `json:"collections"` // records per collection
	TotalRecords int            `json:"total_records"`
	UsedBytes    int64          `json:"used_bytes"`
	PageCount    int64          `json:"page_count"`
	PageSize     int64          `json:"page_size"`
}
