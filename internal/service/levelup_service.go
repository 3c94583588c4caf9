package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pthach/certclimb/config"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/levelup"
	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/repository"
	"github.com/pthach/certclimb/pkg/monitoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrAttemptNotFound = errors.New("level-up attempt not found")
	ErrStageNotEmpty   = errors.New("stage still has questions; it cannot be skipped")
	ErrAllStagesDone   = errors.New("all stages are already complete")
)

// LevelUpService drives the staged-difficulty quiz flow: it owns the
// in-memory attempt store, fetches stage question sets with the mastered-
// question exclusion, persists completed stage attempts, and evaluates the
// pass/fail decision against the recomputed aggregate accuracy.
type LevelUpService interface {
	StartAttempt(userID, examID uint) (*dto.StartAttemptResponseDTO, error)
	GetAttempt(userID uint, attemptID string) (*dto.LevelUpAttemptDTO, error)
	SelectOption(userID uint, attemptID string, optionID uint) (*dto.LevelUpAttemptDTO, error)
	RevealAnswer(userID uint, attemptID string) (*dto.RevealResponseDTO, error)
	NextQuestion(userID uint, attemptID string) (*dto.NextResponseDTO, error)
	SkipStage(userID, examID uint) (*dto.LevelUpProgressDTO, error)
	ResetProgress(userID, examID uint) error
	Progress(userID, examID uint) (*dto.LevelUpProgressDTO, error)
}

type levelUpService struct {
	questionRepo repository.QuestionRepository
	sessionRepo  repository.QuizSessionRepository
	answerRepo   repository.UserAnswerRepository
	progressRepo repository.UserProgressRepository
	accuracySvc  AccuracyService
	progressSvc  ProgressService
	cfg          *config.Config

	mu       sync.Mutex
	attempts map[string]*levelup.Attempt
}

func NewLevelUpService(
	questionRepo repository.QuestionRepository,
	sessionRepo repository.QuizSessionRepository,
	answerRepo repository.UserAnswerRepository,
	progressRepo repository.UserProgressRepository,
	accuracySvc AccuracyService,
	progressSvc ProgressService,
	cfg *config.Config,
) LevelUpService {
	return &levelUpService{
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		progressRepo: progressRepo,
		accuracySvc:  accuracySvc,
		progressSvc:  progressSvc,
		cfg:          cfg,
		attempts:     make(map[string]*levelup.Attempt),
	}
}

func (s *levelUpService) StartAttempt(userID, examID uint) (*dto.StartAttemptResponseDTO, error) {
	stage, err := s.currentStage(userID, examID)
	if err != nil {
		return nil, err
	}
	if levelup.IsTerminal(stage) {
		// Terminal state: never fetch questions, only offer back/reset.
		return &dto.StartAttemptResponseDTO{AllStagesComplete: true, Stage: stage}, nil
	}
	difficulty, _ := levelup.StageDifficulty(stage)

	mastered, err := s.masteredQuestionIDs(userID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.FindByExamAndDifficulty(examID, difficulty, mastered, s.cfg.LevelUp.QuestionCount)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Str("difficulty", difficulty).Msg("level-up: failed to fetch stage questions")
		return nil, fmt.Errorf("fetching stage questions: %w", err)
	}
	if len(questions) == 0 {
		// Every question at this difficulty is mastered. Offer a skip.
		return &dto.StartAttemptResponseDTO{EmptyStage: true, Stage: stage, Difficulty: difficulty}, nil
	}

	attempt, err := levelup.NewAttempt(userID, examID, stage, toEngineQuestions(questions))
	if err != nil {
		return nil, fmt.Errorf("starting attempt: %w", err)
	}

	attemptID := uuid.NewString()
	s.mu.Lock()
	s.attempts[attemptID] = attempt
	s.mu.Unlock()

	log.Info().Uint("userID", userID).Uint("examID", examID).Int("stage", stage).
		Int("questions", attempt.TotalQuestions()).Str("attemptID", attemptID).
		Msg("level-up: stage attempt started")

	return &dto.StartAttemptResponseDTO{
		Attempt:    s.attemptDTO(attemptID, attempt),
		Stage:      stage,
		Difficulty: difficulty,
	}, nil
}

func (s *levelUpService) GetAttempt(userID uint, attemptID string) (*dto.LevelUpAttemptDTO, error) {
	attempt, err := s.lookup(userID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.attemptDTO(attemptID, attempt), nil
}

func (s *levelUpService) SelectOption(userID uint, attemptID string, optionID uint) (*dto.LevelUpAttemptDTO, error) {
	attempt, err := s.lookup(userID, attemptID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := attempt.Select(optionID); err != nil {
		return nil, err
	}
	return s.attemptDTO(attemptID, attempt), nil
}

func (s *levelUpService) RevealAnswer(userID uint, attemptID string) (*dto.RevealResponseDTO, error) {
	attempt, err := s.lookup(userID, attemptID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reveal, err := attempt.Confirm()
	if err != nil {
		return nil, err
	}
	return &dto.RevealResponseDTO{
		IsCorrect:       reveal.IsCorrect,
		CorrectOptionID: reveal.CorrectOptionID,
		Explanation:     reveal.Explanation,
		Score:           attempt.Score(),
	}, nil
}

func (s *levelUpService) NextQuestion(userID uint, attemptID string) (*dto.NextResponseDTO, error) {
	attempt, err := s.lookup(userID, attemptID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if err := attempt.Next(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if attempt.State() != levelup.StateEvaluating {
		resp := &dto.NextResponseDTO{Attempt: s.attemptDTO(attemptID, attempt)}
		s.mu.Unlock()
		return resp, nil
	}
	// Final question answered: the attempt leaves the store whatever happens
	// next. A failed persistence loses the attempt; retry is user-initiated.
	delete(s.attempts, attemptID)
	s.mu.Unlock()

	result, err := s.completeStage(attempt)
	if err != nil {
		return nil, err
	}
	return &dto.NextResponseDTO{Result: result}, nil
}

// completeStage persists the attempt and evaluates pass/fail. Session
// creation failure is fatal. Answer-insert failure keeps the session
// (no compensating delete) and is surfaced as a warning; the aggregate then
// simply misses those events.
func (s *levelUpService) completeStage(attempt *levelup.Attempt) (*dto.StageResultDTO, error) {
	userID, examID := attempt.UserID(), attempt.ExamID()
	now := time.Now()
	session := &model.QuizSession{
		UserID:           userID,
		ExamID:           examID,
		QuizType:         model.QuizTypeLevelUp,
		Score:            attempt.Score(),
		TotalQuestions:   attempt.TotalQuestions(),
		TimeTakenSeconds: attempt.Elapsed(),
		CompletedAt:      &now,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("level-up: failed to create quiz session")
		return nil, fmt.Errorf("saving stage results: %w", err)
	}

	var warnings []string
	records := attempt.Answers()
	answers := make([]model.UserAnswer, len(records))
	for i, rec := range records {
		answers[i] = model.UserAnswer{
			UserID:           userID,
			QuizSessionID:    session.ID,
			QuestionID:       rec.QuestionID,
			SelectedOptionID: rec.SelectedOptionID,
			IsCorrect:        rec.IsCorrect,
			AnsweredAt:       rec.AnsweredAt,
		}
	}
	if err := s.answerRepo.BatchInsert(answers); err != nil {
		log.Error().Err(err).Uint("sessionID", session.ID).Msg("level-up: failed to insert answer batch")
		warnings = append(warnings, "answer details could not be saved")
	}

	if err := s.progressSvc.ApplyStudySession(userID, examID, attempt.TotalQuestions(), attempt.Score()); err != nil {
		log.Warn().Err(err).Uint("userID", userID).Msg("level-up: study streak update failed")
	}

	difficulty := attempt.Difficulty()
	report, err := s.accuracySvc.LevelUpAccuracyByDifficulty(userID, examID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("level-up: accuracy refresh failed")
		report = AccuracyReport{}
		warnings = append(warnings, "accuracy could not be refreshed")
	}
	stats := report[difficulty]
	passed := stats.Accuracy >= s.cfg.LevelUp.PassThreshold

	stage := attempt.Stage()
	newStage := stage
	if passed {
		newStage = stage + 1
		if err := s.progressRepo.AdvanceStage(userID, examID, newStage); err != nil {
			// The local result still reports the pass; the persisted stage is
			// re-read on next entry and may be stale. Known gap.
			log.Error().Err(err).Uint("userID", userID).Int("newStage", newStage).Msg("level-up: failed to persist stage advance")
			warnings = append(warnings, "progress could not be saved")
		}
		monitoring.StageCompletions.WithLabelValues("pass", difficulty).Inc()
	} else {
		monitoring.StageCompletions.WithLabelValues("fail", difficulty).Inc()
	}
	_ = attempt.Finish(passed)

	log.Info().Uint("userID", userID).Uint("examID", examID).Int("stage", stage).
		Bool("passed", passed).Int("accuracy", stats.Accuracy).
		Msg("level-up: stage attempt evaluated")

	return &dto.StageResultDTO{
		SessionID:         session.ID,
		Passed:            passed,
		Score:             attempt.Score(),
		TotalQuestions:    attempt.TotalQuestions(),
		TimeTakenSeconds:  session.TimeTakenSeconds,
		Difficulty:        difficulty,
		Accuracy:          statsDTO(stats),
		NewStage:          newStage,
		AllStagesComplete: levelup.IsTerminal(newStage),
		Warnings:          warnings,
	}, nil
}

func (s *levelUpService) SkipStage(userID, examID uint) (*dto.LevelUpProgressDTO, error) {
	stage, err := s.currentStage(userID, examID)
	if err != nil {
		return nil, err
	}
	if levelup.IsTerminal(stage) {
		return nil, ErrAllStagesDone
	}
	difficulty, _ := levelup.StageDifficulty(stage)

	mastered, err := s.masteredQuestionIDs(userID)
	if err != nil {
		return nil, err
	}
	remaining, err := s.questionRepo.FindByExamAndDifficulty(examID, difficulty, mastered, 1)
	if err != nil {
		return nil, fmt.Errorf("checking stage questions: %w", err)
	}
	if len(remaining) > 0 {
		return nil, ErrStageNotEmpty
	}
	if err := s.progressRepo.AdvanceStage(userID, examID, stage+1); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("level-up: failed to persist stage skip")
		return nil, fmt.Errorf("saving stage skip: %w", err)
	}
	return s.Progress(userID, examID)
}

func (s *levelUpService) ResetProgress(userID, examID uint) error {
	if err := s.sessionRepo.DeleteByUserExamAndType(userID, examID, model.QuizTypeLevelUp); err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("level-up: failed to purge session history")
		return fmt.Errorf("purging level-up history: %w", err)
	}
	if err := s.progressRepo.ResetStage(userID, examID); err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("level-up: failed to reset stage")
		return fmt.Errorf("resetting stage: %w", err)
	}
	log.Info().Uint("userID", userID).Uint("examID", examID).Msg("level-up: progress reset to stage 0")
	return nil
}

func (s *levelUpService) Progress(userID, examID uint) (*dto.LevelUpProgressDTO, error) {
	stage, err := s.currentStage(userID, examID)
	if err != nil {
		return nil, err
	}
	report, err := s.accuracySvc.LevelUpAccuracyByDifficulty(userID, examID)
	if err != nil {
		return nil, err
	}
	progress := &dto.LevelUpProgressDTO{
		ExamID:            examID,
		Stage:             stage,
		AllStagesComplete: levelup.IsTerminal(stage),
		Accuracy:          reportDTO(report),
	}
	if difficulty, ok := levelup.StageDifficulty(stage); ok {
		progress.Difficulty = difficulty
	}
	return progress, nil
}

func (s *levelUpService) currentStage(userID, examID uint) (int, error) {
	progress, err := s.progressRepo.Find(userID, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		log.Error().Err(err).Uint("userID", userID).Msg("level-up: failed to fetch current stage")
		return 0, fmt.Errorf("fetching current stage: %w", err)
	}
	return progress.LevelUpStage, nil
}

// masteredQuestionIDs is the exclusion list: every question answered
// correctly in any prior level-up session. The set only ever grows, so the
// candidate pool for a stage shrinks across retries.
func (s *levelUpService) masteredQuestionIDs(userID uint) ([]uint, error) {
	sessionIDs, err := s.sessionRepo.FindIDsByUserAndType(userID, model.QuizTypeLevelUp)
	if err != nil {
		return nil, fmt.Errorf("fetching level-up sessions: %w", err)
	}
	mastered, err := s.answerRepo.DistinctCorrectQuestionIDs(userID, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching mastered questions: %w", err)
	}
	return mastered, nil
}

func (s *levelUpService) lookup(userID uint, attemptID string) (*levelup.Attempt, error) {
	s.mu.Lock()
	attempt, ok := s.attempts[attemptID]
	s.mu.Unlock()
	if !ok || attempt.UserID() != userID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *levelUpService) attemptDTO(attemptID string, attempt *levelup.Attempt) *dto.LevelUpAttemptDTO {
	out := &dto.LevelUpAttemptDTO{
		AttemptID:        attemptID,
		ExamID:           attempt.ExamID(),
		Stage:            attempt.Stage(),
		Difficulty:       attempt.Difficulty(),
		State:            attempt.State().String(),
		QuestionIndex:    attempt.QuestionIndex(),
		TotalQuestions:   attempt.TotalQuestions(),
		Score:            attempt.Score(),
		SelectedOptionID: attempt.SelectedOptionID(),
	}
	if q, ok := attempt.Current(); ok {
		out.Question = questionDTO(q)
	}
	return out
}

func questionDTO(q levelup.Question) *dto.LevelUpQuestionDTO {
	options := make([]dto.LevelUpOptionDTO, len(q.Options))
	for i, opt := range q.Options {
		options[i] = dto.LevelUpOptionDTO{ID: opt.ID, OptionText: opt.Text, OptionLetter: opt.Letter}
	}
	return &dto.LevelUpQuestionDTO{
		ID:           q.ID,
		QuestionText: q.Text,
		Difficulty:   q.Difficulty,
		Domain:       q.Domain,
		Options:      options,
	}
}

func toEngineQuestions(questions []model.Question) []levelup.Question {
	out := make([]levelup.Question, len(questions))
	for i, q := range questions {
		opts := make([]levelup.Option, len(q.Options))
		for j, o := range q.Options {
			opts[j] = levelup.Option{ID: o.ID, Text: o.OptionText, Letter: o.OptionLetter, Correct: o.IsCorrect}
		}
		sort.Slice(opts, func(a, b int) bool { return opts[a].Letter < opts[b].Letter })
		out[i] = levelup.Question{
			ID:          q.ID,
			Text:        q.QuestionText,
			Explanation: q.Explanation,
			Difficulty:  q.Difficulty,
			Domain:      q.Domain,
			Options:     opts,
		}
	}
	return out
}

func statsDTO(stats DifficultyStats) dto.DifficultyStatsDTO {
	return dto.DifficultyStatsDTO{Accuracy: stats.Accuracy, Correct: stats.Correct, Total: stats.Total}
}

func reportDTO(report AccuracyReport) dto.AccuracyReportDTO {
	return dto.AccuracyReportDTO{
		Easy:   statsDTO(report[model.DifficultyEasy]),
		Medium: statsDTO(report[model.DifficultyMedium]),
		Hard:   statsDTO(report[model.DifficultyHard]),
	}
}
