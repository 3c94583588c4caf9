package repository

import (
	"github.com/pthach/certclimb/internal/model"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(exam *model.Exam) error
	FindByID(id uint) (*model.Exam, error)
	FindAllWithQuestionCount() ([]struct {
		model.Exam
		QuestionCount int
	}, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	// GORM creates nested questions/options when populated on the exam.
	return r.db.Create(exam).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.First(&exam, id).Error
	return &exam, err
}

func (r *examRepository) FindAllWithQuestionCount() ([]struct {
	model.Exam
	QuestionCount int
}, error) {
	var results []struct {
		model.Exam
		QuestionCount int
	}
	err := r.db.Model(&model.Exam{}).
		Select("exams.*, (SELECT COUNT(*) FROM questions WHERE questions.exam_id = exams.id AND questions.deleted_at IS NULL) as question_count").
		Where("exams.is_active = ?", true).
		Where("exams.deleted_at IS NULL").
		Order("exams.created_at DESC").
		Scan(&results).Error
	return results, err
}
