package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/repository"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNotFound  = errors.New("quiz session not found")
	ErrSessionCompleted = errors.New("quiz session is already completed")
	ErrNoMissedQuestion = errors.New("no missed questions to review")
	ErrNotEnoughInBank  = errors.New("no questions available for this exam")
)

const (
	quick10Count = 10
	timedCount   = 20
	dailyCount   = 1
)

// QuizService runs the non-staged quiz modes. Unlike the level-up flow,
// grading happens server-side on completion: the client submits its answer
// sheet once and the score is computed against the stored correct options.
type QuizService interface {
	StartQuiz(userID uint, req dto.StartQuizRequest) (*dto.StartQuizResponseDTO, error)
	CompleteQuiz(userID uint, sessionID uint, req dto.CompleteQuizRequest) (*dto.QuizResultDTO, error)
	SessionHistory(userID uint, examID *uint) ([]dto.SessionSummaryDTO, error)
	SessionDetail(userID, sessionID uint) (*dto.SessionDetailDTO, error)
	Stats(userID, examID uint) (*dto.StatsDTO, error)
}

type quizService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	sessionRepo  repository.QuizSessionRepository
	answerRepo   repository.UserAnswerRepository
	progressSvc  ProgressService
	accuracySvc  AccuracyService
}

func NewQuizService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	sessionRepo repository.QuizSessionRepository,
	answerRepo repository.UserAnswerRepository,
	progressSvc ProgressService,
	accuracySvc AccuracyService,
) QuizService {
	return &quizService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		progressSvc:  progressSvc,
		accuracySvc:  accuracySvc,
	}
}

func (s *quizService) StartQuiz(userID uint, req dto.StartQuizRequest) (*dto.StartQuizResponseDTO, error) {
	exam, err := s.examRepo.FindByID(req.ExamID)
	if err != nil {
		return nil, err
	}

	var (
		questions []model.Question
		timeLimit *int
	)
	switch req.Mode {
	case model.QuizTypeMissed:
		questions, err = s.missedQuestions(userID, req.ExamID)
	case model.QuizTypeTimed:
		questions, err = s.questionRepo.FindUniqueRandom(req.ExamID, userID, timedCount)
		seconds := exam.DurationMinutes * 60
		timeLimit = &seconds
	case model.QuizTypeQuick10:
		questions, err = s.questionRepo.FindUniqueRandom(req.ExamID, userID, quick10Count)
	case model.QuizTypeDaily:
		questions, err = s.questionRepo.FindUniqueRandom(req.ExamID, userID, dailyCount)
	case model.QuizTypeCustom:
		count := req.QuestionCount
		if count == 0 {
			count = quick10Count
		}
		questions, err = s.questionRepo.FindUniqueRandom(req.ExamID, userID, count)
	default:
		return nil, fmt.Errorf("unsupported quiz mode %q", req.Mode)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", req.Mode).Uint("examID", req.ExamID).Msg("failed to fetch quiz questions")
		return nil, fmt.Errorf("fetching quiz questions: %w", err)
	}
	if len(questions) == 0 {
		if req.Mode == model.QuizTypeMissed {
			return nil, ErrNoMissedQuestion
		}
		return nil, ErrNotEnoughInBank
	}

	session := &model.QuizSession{
		UserID:         userID,
		ExamID:         req.ExamID,
		QuizType:       req.Mode,
		TotalQuestions: len(questions),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("failed to create quiz session")
		return nil, fmt.Errorf("creating quiz session: %w", err)
	}

	log.Info().Uint("userID", userID).Str("mode", req.Mode).Uint("sessionID", session.ID).
		Int("questions", len(questions)).Msg("quiz started")

	return &dto.StartQuizResponseDTO{
		SessionID:        session.ID,
		Mode:             req.Mode,
		TimeLimitSeconds: timeLimit,
		Questions:        toQuizQuestionDTOs(questions),
	}, nil
}

func (s *quizService) CompleteQuiz(userID uint, sessionID uint, req dto.CompleteQuizRequest) (*dto.QuizResultDTO, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if session.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}

	questionIDs := make([]uint, len(req.Answers))
	for i, a := range req.Answers {
		questionIDs[i] = a.QuestionID
	}
	questions, err := s.questionRepo.FindByIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("loading answered questions: %w", err)
	}
	correctOption := make(map[uint]uint, len(questions))
	for _, q := range questions {
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correctOption[q.ID] = opt.ID
			}
		}
	}

	now := time.Now()
	score := 0
	answers := make([]model.UserAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		correctID, known := correctOption[a.QuestionID]
		if !known {
			// Answer for a question outside the exam; drop it silently.
			continue
		}
		isCorrect := a.SelectedOptionID == correctID
		if isCorrect {
			score++
		}
		answers = append(answers, model.UserAnswer{
			UserID:           userID,
			QuizSessionID:    session.ID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        isCorrect,
			AnsweredAt:       now,
		})
	}

	session.Score = score
	session.TimeTakenSeconds = int(now.Sub(session.CreatedAt).Seconds())
	session.CompletedAt = &now
	if err := s.sessionRepo.Update(session); err != nil {
		log.Error().Err(err).Uint("sessionID", session.ID).Msg("failed to finalize quiz session")
		return nil, fmt.Errorf("finalizing quiz session: %w", err)
	}
	if err := s.answerRepo.BatchInsert(answers); err != nil {
		log.Error().Err(err).Uint("sessionID", session.ID).Msg("failed to insert quiz answers")
		return nil, fmt.Errorf("saving quiz answers: %w", err)
	}
	if err := s.progressSvc.ApplyStudySession(userID, session.ExamID, len(answers), score); err != nil {
		log.Warn().Err(err).Uint("userID", userID).Msg("study streak update failed")
	}

	return &dto.QuizResultDTO{
		SessionID:        session.ID,
		Score:            score,
		TotalQuestions:   session.TotalQuestions,
		TimeTakenSeconds: session.TimeTakenSeconds,
		CompletedAt:      session.CompletedAt,
	}, nil
}

func (s *quizService) SessionHistory(userID uint, examID *uint) ([]dto.SessionSummaryDTO, error) {
	sessions, err := s.sessionRepo.FindAllByUser(userID, examID)
	if err != nil {
		return nil, fmt.Errorf("loading session history: %w", err)
	}
	out := make([]dto.SessionSummaryDTO, len(sessions))
	for i, sess := range sessions {
		out[i] = dto.SessionSummaryDTO{
			ID:               sess.ID,
			ExamID:           sess.ExamID,
			QuizType:         sess.QuizType,
			Score:            sess.Score,
			TotalQuestions:   sess.TotalQuestions,
			TimeTakenSeconds: sess.TimeTakenSeconds,
			CompletedAt:      sess.CompletedAt,
		}
	}
	return out, nil
}

func (s *quizService) SessionDetail(userID, sessionID uint) (*dto.SessionDetailDTO, error) {
	session, err := s.sessionRepo.FindByIDWithAnswers(sessionID)
	if err != nil || session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	questionIDs := make([]uint, len(session.Answers))
	for i, a := range session.Answers {
		questionIDs[i] = a.QuestionID
	}
	questions, err := s.questionRepo.FindByIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("loading reviewed questions: %w", err)
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	detail := &dto.SessionDetailDTO{
		SessionSummaryDTO: dto.SessionSummaryDTO{
			ID:               session.ID,
			ExamID:           session.ExamID,
			QuizType:         session.QuizType,
			Score:            session.Score,
			TotalQuestions:   session.TotalQuestions,
			TimeTakenSeconds: session.TimeTakenSeconds,
			CompletedAt:      session.CompletedAt,
		},
		Answers: make([]dto.AnswerReviewDTO, len(session.Answers)),
	}
	for i, a := range session.Answers {
		review := dto.AnswerReviewDTO{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
		}
		if q, ok := byID[a.QuestionID]; ok {
			review.QuestionText = q.QuestionText
			review.Explanation = q.Explanation
			for _, opt := range q.Options {
				if opt.IsCorrect {
					review.CorrectOptionID = opt.ID
				}
			}
		}
		detail.Answers[i] = review
	}
	return detail, nil
}

func (s *quizService) Stats(userID, examID uint) (*dto.StatsDTO, error) {
	progress, err := s.progressSvc.GetProgress(userID, examID)
	if err != nil {
		return nil, err
	}
	report, err := s.accuracySvc.LevelUpAccuracyByDifficulty(userID, examID)
	if err != nil {
		return nil, err
	}
	return &dto.StatsDTO{Progress: *progress, LevelUp: reportDTO(report)}, nil
}

// missedQuestions collects questions whose most recent answer was wrong,
// scoped to the exam.
func (s *quizService) missedQuestions(userID, examID uint) ([]model.Question, error) {
	latest, err := s.answerRepo.FindLatestPerQuestion(userID)
	if err != nil {
		return nil, err
	}
	var ids []uint
	for _, ans := range latest {
		if !ans.IsCorrect {
			ids = append(ids, ans.QuestionID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	questions, err := s.questionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	scoped := questions[:0]
	for _, q := range questions {
		if q.ExamID == examID {
			scoped = append(scoped, q)
		}
	}
	return scoped, nil
}

func toQuizQuestionDTOs(questions []model.Question) []dto.QuizQuestionDTO {
	out := make([]dto.QuizQuestionDTO, len(questions))
	for i, q := range questions {
		options := make([]dto.QuizOptionDTO, len(q.Options))
		for j, opt := range q.Options {
			options[j] = dto.QuizOptionDTO{ID: opt.ID, OptionText: opt.OptionText, OptionLetter: opt.OptionLetter}
		}
		sort.Slice(options, func(a, b int) bool { return options[a].OptionLetter < options[b].OptionLetter })
		out[i] = dto.QuizQuestionDTO{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Difficulty:   q.Difficulty,
			Domain:       q.Domain,
			Options:      options,
		}
	}
	return out
}
