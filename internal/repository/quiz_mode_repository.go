package repository

import (
	"github.com/pthach/certclimb/internal/model"
	"gorm.io/gorm"
)

type QuizModeRepository interface {
	FindActive() ([]model.QuizMode, error)
}

type quizModeRepository struct {
	db *gorm.DB
}

func NewQuizModeRepository(db *gorm.DB) QuizModeRepository {
	return &quizModeRepository{db: db}
}

func (r *quizModeRepository) FindActive() ([]model.QuizMode, error) {
	var modes []model.QuizMode
	err := r.db.Where("is_active = ?", true).
		Order("order_index ASC").
		Find(&modes).Error
	return modes, err
}
