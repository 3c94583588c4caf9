package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestionOption belongs to exactly one Question. Exactly one option per
// question carries IsCorrect = true; enforced at admin creation time.
type QuestionOption struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	QuestionID   uint           `json:"question_id" gorm:"not null;index"`
	OptionText   string         `json:"option_text" gorm:"type:text;not null"`
	OptionLetter string         `json:"option_letter" gorm:"not null"` // "A".."D"
	IsCorrect    bool           `json:"is_correct" gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
