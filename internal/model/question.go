package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Question struct {
	ID           uint             `gorm:"primarykey" json:"id"`
	ExamID       uint             `json:"exam_id" gorm:"not null;index"`
	QuestionText string           `json:"question_text" gorm:"type:text;not null"`
	Explanation  string           `json:"explanation" gorm:"type:text"`
	Difficulty   string           `json:"difficulty" gorm:"not null;index"` // "easy", "medium", "hard"
	Domain       string           `json:"domain,omitempty"`                 // free-text topic tag, e.g. "Networking"
	Options      []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
}
