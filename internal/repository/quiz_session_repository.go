package repository

import (
	"github.com/pthach/certclimb/internal/model"
	"gorm.io/gorm"
)

type QuizSessionRepository interface {
	Create(session *model.QuizSession) error
	Update(session *model.QuizSession) error
	FindByID(id uint) (*model.QuizSession, error)
	FindByIDWithAnswers(id uint) (*model.QuizSession, error)
	FindIDsByUserAndType(userID uint, quizType string) ([]uint, error)
	FindAllByUser(userID uint, examID *uint) ([]model.QuizSession, error)
	// DeleteByUserExamAndType removes the user's sessions of one quiz type for
	// an exam together with their answers, in a single transaction. Used only
	// by the level-up reset.
	DeleteByUserExamAndType(userID, examID uint, quizType string) error
}

type quizSessionRepository struct {
	db *gorm.DB
}

func NewQuizSessionRepository(db *gorm.DB) QuizSessionRepository {
	return &quizSessionRepository{db: db}
}

func (r *quizSessionRepository) Create(session *model.QuizSession) error {
	return r.db.Create(session).Error
}

func (r *quizSessionRepository) Update(session *model.QuizSession) error {
	return r.db.Save(session).Error
}

func (r *quizSessionRepository) FindByID(id uint) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.db.First(&session, id).Error
	return &session, err
}

func (r *quizSessionRepository) FindByIDWithAnswers(id uint) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.db.Preload("Answers").First(&session, id).Error
	return &session, err
}

func (r *quizSessionRepository) FindIDsByUserAndType(userID uint, quizType string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.QuizSession{}).
		Where("user_id = ?", userID).
		Where("quiz_type = ?", quizType).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *quizSessionRepository) FindAllByUser(userID uint, examID *uint) ([]model.QuizSession, error) {
	var sessions []model.QuizSession
	query := r.db.Where("user_id = ?", userID)
	if examID != nil {
		query = query.Where("exam_id = ?", *examID)
	}
	err := query.Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *quizSessionRepository) DeleteByUserExamAndType(userID, examID uint, quizType string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.QuizSession{}).
			Where("user_id = ?", userID).
			Where("exam_id = ?", examID).
			Where("quiz_type = ?", quizType).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("quiz_session_id IN ?", ids).Delete(&model.UserAnswer{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.QuizSession{}).Error
	})
}
