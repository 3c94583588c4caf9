package model

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Title           string         `json:"title" gorm:"not null;uniqueIndex"` // "AWS Solutions Architect Associate"
	ShortName       string         `json:"short_name" gorm:"not null"`
	Description     string         `json:"description,omitempty"`
	Category        string         `json:"category,omitempty"`
	PassingScore    int            `json:"passing_score" gorm:"default:70"`
	DurationMinutes int            `json:"duration_minutes" gorm:"default:30"`
	IsActive        bool           `json:"is_active" gorm:"default:true;index"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
