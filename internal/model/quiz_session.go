package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuizTypeDaily   = "daily"
	QuizTypeQuick10 = "quick_10"
	QuizTypeTimed   = "timed"
	QuizTypeLevelUp = "level_up"
	QuizTypeMissed  = "missed"
	QuizTypeCustom  = "custom"
)

// QuizSession is one persisted record of a completed quiz attempt.
// Append-only history: rows are never updated after completion, and only the
// level-up reset cascade deletes them.
type QuizSession struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	UserID           uint           `json:"user_id" gorm:"not null;index"`
	ExamID           uint           `json:"exam_id" gorm:"not null;index"`
	QuizType         string         `json:"quiz_type" gorm:"not null;index"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"total_questions"`
	TimeTakenSeconds int            `json:"time_taken_seconds"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	Answers          []UserAnswer   `json:"answers,omitempty" gorm:"foreignKey:QuizSessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
