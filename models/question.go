package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Question answer modes
const (
	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
)

// Question is one step of the questionnaire. The option vocabulary for a
// question is the options table filtered by CategoryKey; the scoring logic is
// agnostic to question content beyond the six fixed category keys.
type Question struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CategoryKey  string `gorm:"not null;uniqueIndex" json:"category_key"`
	QuestionText string `gorm:"not null" json:"question_text"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	Type         string `gorm:"not null;default:single" json:"type"`
	Order        int    `gorm:"default:1" json:"order"`
}

// BeforeCreate hook to generate UUID
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Question model
func (Question) TableName() string {
	return "questions"
}

// IsMultiple reports whether the question accepts multiple answers
func (q *Question) IsMultiple() bool {
	return q.Type == QuestionTypeMultiple
}
