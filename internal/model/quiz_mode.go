package model

import (
	"time"

	"gorm.io/gorm"
)

// QuizMode is a catalog entry for the home-screen mode list. Editable by
// admins, rarely changing, so the listing is served from a short-lived cache.
type QuizMode struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Slug        string         `json:"slug" gorm:"not null;uniqueIndex"` // matches QuizSession.QuizType values
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	OrderIndex  int            `json:"order_index" gorm:"not null;default:0"`
	IsActive    bool           `json:"is_active" gorm:"default:true;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
