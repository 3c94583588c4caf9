package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/repository"
	"github.com/rs/zerolog/log"
)

var ErrInvalidOptionSet = errors.New("a question needs exactly one correct option and unique letters")

// AdminService covers content management: exam creation with an optional
// inline question bank, and per-question CRUD.
type AdminService interface {
	CreateExam(req dto.ExamCreateDTO) (*dto.ExamAdminDTO, error)
	GetExamWithQuestions(examID uint) (*dto.ExamAdminDTO, error)
	CreateQuestion(examID uint, req dto.QuestionCreateDTO) (*dto.QuestionAdminDTO, error)
	UpdateQuestion(questionID uint, req dto.QuestionCreateDTO) (*dto.QuestionAdminDTO, error)
	DeleteQuestion(questionID uint) error
}

type adminService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
}

func NewAdminService(examRepo repository.ExamRepository, questionRepo repository.QuestionRepository) AdminService {
	return &adminService{examRepo: examRepo, questionRepo: questionRepo}
}

func (s *adminService) CreateExam(req dto.ExamCreateDTO) (*dto.ExamAdminDTO, error) {
	for i, q := range req.Questions {
		if err := validateOptionSet(q.Options); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	exam := &model.Exam{
		Title:           req.Title,
		ShortName:       req.ShortName,
		Description:     req.Description,
		Category:        req.Category,
		PassingScore:    req.PassingScore,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}
	if exam.PassingScore == 0 {
		exam.PassingScore = 70
	}
	exam.Questions = make([]model.Question, len(req.Questions))
	for i, q := range req.Questions {
		exam.Questions[i] = buildQuestion(q)
	}

	if err := s.examRepo.Create(exam); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("admin: failed to create exam")
		return nil, fmt.Errorf("creating exam: %w", err)
	}
	log.Info().Uint("examID", exam.ID).Int("questions", len(exam.Questions)).Msg("admin: exam created")
	return examAdminDTO(exam)
}

func (s *adminService) GetExamWithQuestions(examID uint) (*dto.ExamAdminDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.FindByExam(examID)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	exam.Questions = questions
	return examAdminDTO(exam)
}

func (s *adminService) CreateQuestion(examID uint, req dto.QuestionCreateDTO) (*dto.QuestionAdminDTO, error) {
	if err := validateOptionSet(req.Options); err != nil {
		return nil, err
	}
	if _, err := s.examRepo.FindByID(examID); err != nil {
		return nil, err
	}
	question := buildQuestion(req)
	question.ExamID = examID
	if err := s.questionRepo.Create(&question); err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("admin: failed to create question")
		return nil, fmt.Errorf("creating question: %w", err)
	}
	return questionAdminDTO(&question)
}

func (s *adminService) UpdateQuestion(questionID uint, req dto.QuestionCreateDTO) (*dto.QuestionAdminDTO, error) {
	if err := validateOptionSet(req.Options); err != nil {
		return nil, err
	}
	existing, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		return nil, err
	}
	updated := buildQuestion(req)
	updated.ID = existing.ID
	updated.ExamID = existing.ExamID
	if err := s.questionRepo.Update(&updated); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("admin: failed to update question")
		return nil, fmt.Errorf("updating question: %w", err)
	}
	return questionAdminDTO(&updated)
}

func (s *adminService) DeleteQuestion(questionID uint) error {
	if _, err := s.questionRepo.FindByID(questionID); err != nil {
		return err
	}
	if err := s.questionRepo.Delete(questionID); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("admin: failed to delete question")
		return fmt.Errorf("deleting question: %w", err)
	}
	return nil
}

// validateOptionSet enforces the bank's shape: exactly one correct option and
// no duplicate letters within a question.
func validateOptionSet(options []dto.OptionCreateDTO) error {
	correct := 0
	letters := make(map[string]bool, len(options))
	for _, opt := range options {
		letter := strings.ToUpper(opt.OptionLetter)
		if letters[letter] {
			return ErrInvalidOptionSet
		}
		letters[letter] = true
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return ErrInvalidOptionSet
	}
	return nil
}

func buildQuestion(req dto.QuestionCreateDTO) model.Question {
	question := model.Question{
		QuestionText: req.QuestionText,
		Explanation:  req.Explanation,
		Difficulty:   req.Difficulty,
		Domain:       req.Domain,
	}
	question.Options = make([]model.QuestionOption, len(req.Options))
	for i, opt := range req.Options {
		question.Options[i] = model.QuestionOption{
			OptionText:   opt.OptionText,
			OptionLetter: strings.ToUpper(opt.OptionLetter),
			IsCorrect:    opt.IsCorrect,
		}
	}
	return question
}

func examAdminDTO(exam *model.Exam) (*dto.ExamAdminDTO, error) {
	var out dto.ExamAdminDTO
	if err := copier.Copy(&out, exam); err != nil {
		return nil, err
	}
	return &out, nil
}

func questionAdminDTO(question *model.Question) (*dto.QuestionAdminDTO, error) {
	var out dto.QuestionAdminDTO
	if err := copier.Copy(&out, question); err != nil {
		return nil, err
	}
	return &out, nil
}
