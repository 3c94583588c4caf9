package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/repository"
)

// ExamService is the user-facing exam catalog.
type ExamService interface {
	GetAllExams() ([]dto.ExamSummaryDTO, error)
	GetExam(id uint) (*dto.ExamSummaryDTO, error)
}

type examService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
}

func NewExamService(examRepo repository.ExamRepository, questionRepo repository.QuestionRepository) ExamService {
	return &examService{examRepo: examRepo, questionRepo: questionRepo}
}

func (s *examService) GetAllExams() ([]dto.ExamSummaryDTO, error) {
	exams, err := s.examRepo.FindAllWithQuestionCount()
	if err != nil {
		return nil, fmt.Errorf("listing exams: %w", err)
	}
	out := make([]dto.ExamSummaryDTO, len(exams))
	for i, e := range exams {
		if err := copier.Copy(&out[i], &e.Exam); err != nil {
			return nil, err
		}
		out[i].QuestionCount = e.QuestionCount
	}
	return out, nil
}

func (s *examService) GetExam(id uint) (*dto.ExamSummaryDTO, error) {
	exam, err := s.examRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	var out dto.ExamSummaryDTO
	if err := copier.Copy(&out, exam); err != nil {
		return nil, err
	}
	counts, err := s.questionRepo.CountByDifficulty(id)
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}
	for _, n := range counts {
		out.QuestionCount += n
	}
	return &out, nil
}
