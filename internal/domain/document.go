package domain

import "time"

// Document is an uploaded piece of study material (lecture notes, a PDF
// chapter) that quizzes and flashcards get generated from.
type Document struct {
	DocumentID  string    `json:"id" dynamodbav:"document_id"`
	Object      string    `json:"object" dynamodbav:"object"`
	Size        int64     `json:"size" dynamodbav:"size"`
	Type        string    `json:"type" dynamodbav:"type"`
	Name        string    `json:"name" dynamodbav:"name"`
	Hash        string    `json:"hash" dynamodbav:"hash"`
	OwnerUserID string    `json:"owner_id" dynamodbav:"owner_user_id"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}
