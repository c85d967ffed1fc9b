package domain

import "time"

const (
	StudyKindQuiz       = "quiz"
	StudyKindFlashcards = "flashcards"
	StudyKindMindMap    = "mindmap"
)

// StudyRecord is one completed study activity (a quiz attempt, a flashcard
// run, a generated mind map) in a user's history.
type StudyRecord struct {
	RecordID   string    `json:"id" dynamodbav:"record_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	Kind       string    `json:"kind" dynamodbav:"kind"`
	Topic      string    `json:"topic" dynamodbav:"topic"`
	Score      int       `json:"score" dynamodbav:"score"`
	Total      int       `json:"total" dynamodbav:"total"`
	Difficulty string    `json:"difficulty" dynamodbav:"difficulty"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateStudyRecordRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=quiz flashcards mindmap"`
	Topic      string `json:"topic" validate:"required"`
	Score      int    `json:"score" validate:"min=0"`
	Total      int    `json:"total" validate:"min=0"`
	Difficulty string `json:"difficulty"`
}
