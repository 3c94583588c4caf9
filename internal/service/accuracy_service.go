package service

import (
	"fmt"
	"math"

	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/repository"
	"github.com/rs/zerolog/log"
)

// DifficultyStats is the aggregate for one difficulty: Accuracy is a rounded
// integer percentage, Correct the count of correct answer events, Total the
// size of the exam's question bank at that difficulty.
type DifficultyStats struct {
	Accuracy int
	Correct  int
	Total    int
}

// AccuracyReport maps difficulty tags to their stats.
type AccuracyReport map[string]DifficultyStats

// AccuracyService recomputes per-difficulty level-up accuracy from scratch on
// every call. The stage pass/fail decision reads this immediately after a
// stage attempt is persisted, so the result must never be cached.
type AccuracyService interface {
	LevelUpAccuracyByDifficulty(userID, examID uint) (AccuracyReport, error)
}

type accuracyService struct {
	sessionRepo  repository.QuizSessionRepository
	answerRepo   repository.UserAnswerRepository
	questionRepo repository.QuestionRepository
}

func NewAccuracyService(
	sessionRepo repository.QuizSessionRepository,
	answerRepo repository.UserAnswerRepository,
	questionRepo repository.QuestionRepository,
) AccuracyService {
	return &accuracyService{
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
	}
}

// LevelUpAccuracyByDifficulty aggregates the user's level-up history.
//
// Correct counts every matching correct answer event across all sessions, with
// no deduplication by question; the denominator is the exam's full bank size
// per difficulty, not the number of distinct questions attempted. Answering
// the same question correctly in two sessions therefore counts twice against
// a fixed denominator. Tests pin this arithmetic; do not "fix" it without a
// coordinated data migration.
func (s *accuracyService) LevelUpAccuracyByDifficulty(userID, examID uint) (AccuracyReport, error) {
	sessionIDs, err := s.sessionRepo.FindIDsByUserAndType(userID, model.QuizTypeLevelUp)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("accuracy: failed to list level-up sessions")
		return nil, fmt.Errorf("fetching level-up sessions: %w", err)
	}
	if len(sessionIDs) == 0 {
		// No history yet is a defined empty state, not an error.
		return emptyReport(), nil
	}

	answers, err := s.answerRepo.FindBySessionIDs(userID, sessionIDs)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("accuracy: failed to fetch answers")
		return nil, fmt.Errorf("fetching answers: %w", err)
	}

	questionIDs := distinctQuestionIDs(answers)
	difficultyByID, err := s.questionRepo.DifficultiesByIDs(examID, questionIDs)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("accuracy: failed to resolve question difficulties")
		return nil, fmt.Errorf("resolving question difficulties: %w", err)
	}

	correct := map[string]int{}
	for _, ans := range answers {
		difficulty, ok := difficultyByID[ans.QuestionID]
		if !ok {
			// Answer belongs to a question outside this exam.
			continue
		}
		if ans.IsCorrect {
			correct[difficulty]++
		}
	}

	totals, err := s.questionRepo.CountByDifficulty(examID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("accuracy: failed to count question bank")
		return nil, fmt.Errorf("counting question bank: %w", err)
	}

	report := AccuracyReport{}
	for _, difficulty := range []string{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		report[difficulty] = calculateStats(correct[difficulty], totals[difficulty])
	}
	return report, nil
}

func calculateStats(correct, total int) DifficultyStats {
	accuracy := 0
	if total > 0 {
		accuracy = int(math.Round(float64(correct) / float64(total) * 100))
	}
	return DifficultyStats{Accuracy: accuracy, Correct: correct, Total: total}
}

func emptyReport() AccuracyReport {
	return AccuracyReport{
		model.DifficultyEasy:   {},
		model.DifficultyMedium: {},
		model.DifficultyHard:   {},
	}
}

func distinctQuestionIDs(answers []model.UserAnswer) []uint {
	seen := make(map[uint]bool, len(answers))
	ids := make([]uint, 0, len(answers))
	for _, ans := range answers {
		if seen[ans.QuestionID] {
			continue
		}
		seen[ans.QuestionID] = true
		ids = append(ids, ans.QuestionID)
	}
	return ids
}
