package model

import (
	"time"

	"gorm.io/gorm"
)

// UserAnswer records one graded answer within a session. Answers are buffered
// in memory during an attempt and bulk-inserted after the session row exists.
type UserAnswer struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	UserID           uint           `json:"user_id" gorm:"not null;index"`
	QuizSessionID    uint           `json:"quiz_session_id" gorm:"not null;index"`
	QuestionID       uint           `json:"question_id" gorm:"not null;index"`
	SelectedOptionID uint           `json:"selected_option_id" gorm:"not null"`
	IsCorrect        bool           `json:"is_correct" gorm:"not null"`
	AnsweredAt       time.Time      `json:"answered_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
