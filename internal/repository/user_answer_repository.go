package repository

import (
	"github.com/pthach/certclimb/internal/model"
	"gorm.io/gorm"
)

type UserAnswerRepository interface {
	BatchInsert(answers []model.UserAnswer) error
	FindBySessionIDs(userID uint, sessionIDs []uint) ([]model.UserAnswer, error)
	// DistinctCorrectQuestionIDs returns the IDs of questions the user has
	// answered correctly at least once within the given sessions. This is the
	// "mastered question" set excluded from future level-up fetches.
	DistinctCorrectQuestionIDs(userID uint, sessionIDs []uint) ([]uint, error)
	// FindLatestPerQuestion returns the user's most recent answer for each
	// distinct question, newest first. Feeds the missed-questions quiz mode.
	FindLatestPerQuestion(userID uint) ([]model.UserAnswer, error)
}

type userAnswerRepository struct {
	db *gorm.DB
}

func NewUserAnswerRepository(db *gorm.DB) UserAnswerRepository {
	return &userAnswerRepository{db: db}
}

func (r *userAnswerRepository) BatchInsert(answers []model.UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Create(&answers).Error
}

func (r *userAnswerRepository) FindBySessionIDs(userID uint, sessionIDs []uint) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	if len(sessionIDs) == 0 {
		return answers, nil
	}
	err := r.db.Where("user_id = ?", userID).
		Where("quiz_session_id IN ?", sessionIDs).
		Find(&answers).Error
	return answers, err
}

func (r *userAnswerRepository) DistinctCorrectQuestionIDs(userID uint, sessionIDs []uint) ([]uint, error) {
	var ids []uint
	if len(sessionIDs) == 0 {
		return ids, nil
	}
	err := r.db.Model(&model.UserAnswer{}).
		Distinct("question_id").
		Where("user_id = ?", userID).
		Where("quiz_session_id IN ?", sessionIDs).
		Where("is_correct = ?", true).
		Pluck("question_id", &ids).Error
	return ids, err
}

func (r *userAnswerRepository) FindLatestPerQuestion(userID uint) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.db.Where("user_id = ?", userID).
		Order("answered_at DESC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(answers))
	latest := answers[:0]
	for _, ans := range answers {
		if seen[ans.QuestionID] {
			continue
		}
		seen[ans.QuestionID] = true
		latest = append(latest, ans)
	}
	return latest, nil
}
