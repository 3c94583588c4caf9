package repository

import (
	"github.com/pthach/certclimb/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	// FindByExamAndDifficulty returns up to limit questions (with options) for
	// one exam at one difficulty, skipping excludeIDs. ORDER BY is left to the
	// database; presentation order is shuffled by the caller.
	FindByExamAndDifficulty(examID uint, difficulty string, excludeIDs []uint, limit int) ([]model.Question, error)
	// FindByExam returns the full bank for an exam, all difficulties.
	FindByExam(examID uint) ([]model.Question, error)
	// FindUniqueRandom returns a server-side randomized question set for the
	// exam, excluding every question the user has answered before in any mode.
	FindUniqueRandom(examID, userID uint, limit int) ([]model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
	CountByDifficulty(examID uint) (map[string]int, error)
	// DifficultiesByIDs maps question IDs to their difficulty tag, scoped to
	// the given exam. IDs from other exams are simply absent from the result.
	DifficultiesByIDs(examID uint, ids []uint) (map[uint]string, error)
	Update(question *model.Question) error
	Delete(id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.Preload("Options").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByExamAndDifficulty(examID uint, difficulty string, excludeIDs []uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	query := r.db.Preload("Options").
		Where("exam_id = ?", examID).
		Where("difficulty = ?", difficulty)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if err := query.Limit(limit).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindByExam(examID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Preload("Options").
		Where("exam_id = ?", examID).
		Order("id").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindUniqueRandom(examID, userID uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	answered := r.db.Model(&model.UserAnswer{}).
		Select("question_id").
		Where("user_id = ?", userID)
	err := r.db.Preload("Options").
		Where("exam_id = ?", examID).
		Where("id NOT IN (?)", answered).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.Preload("Options").Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *questionRepository) CountByDifficulty(examID uint) (map[string]int, error) {
	var rows []struct {
		Difficulty string
		Count      int
	}
	err := r.db.Model(&model.Question{}).
		Select("difficulty, COUNT(*) as count").
		Where("exam_id = ?", examID).
		Group("difficulty").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Difficulty] = row.Count
	}
	return counts, nil
}

func (r *questionRepository) DifficultiesByIDs(examID uint, ids []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []struct {
		ID         uint
		Difficulty string
	}
	err := r.db.Model(&model.Question{}).
		Select("id, difficulty").
		Where("exam_id = ?", examID).
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.Difficulty
	}
	return result, nil
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, id).Error
}
