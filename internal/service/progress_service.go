package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProgressService maintains the per-(user, exam) study bookkeeping: lifetime
// answered/correct counters and the daily study streak.
type ProgressService interface {
	ApplyStudySession(userID, examID uint, questionsAnswered, correctAnswers int) error
	GetProgress(userID, examID uint) (*dto.UserProgressDTO, error)
}

type progressService struct {
	progressRepo repository.UserProgressRepository
	now          func() time.Time
}

func NewProgressService(progressRepo repository.UserProgressRepository) ProgressService {
	return &progressService{progressRepo: progressRepo, now: time.Now}
}

func (s *progressService) ApplyStudySession(userID, examID uint, questionsAnswered, correctAnswers int) error {
	progress, err := s.progressRepo.Find(userID, examID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("loading progress: %w", err)
		}
		progress = &model.UserProgress{UserID: userID, ExamID: examID}
	}

	now := s.now()
	progress.StudyStreak = nextStreak(progress.LastStudied, progress.StudyStreak, now)
	progress.QuestionsAnswered += questionsAnswered
	progress.QuestionsCorrect += correctAnswers
	progress.LastStudied = &now

	if err := s.progressRepo.Save(progress); err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("failed to save study progress")
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

func (s *progressService) GetProgress(userID, examID uint) (*dto.UserProgressDTO, error) {
	progress, err := s.progressRepo.Find(userID, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.UserProgressDTO{ExamID: examID}, nil
		}
		return nil, fmt.Errorf("loading progress: %w", err)
	}
	return &dto.UserProgressDTO{
		ExamID:            examID,
		QuestionsAnswered: progress.QuestionsAnswered,
		QuestionsCorrect:  progress.QuestionsCorrect,
		LastStudied:       progress.LastStudied,
		StudyStreak:       progress.StudyStreak,
	}, nil
}

// nextStreak continues the streak when the previous study day was yesterday,
// keeps it for a second session today, and restarts at 1 otherwise.
func nextStreak(lastStudied *time.Time, streak int, now time.Time) int {
	if lastStudied == nil {
		return 1
	}
	last := dateOf(*lastStudied)
	today := dateOf(now)
	yesterday := dateOf(now.AddDate(0, 0, -1))
	switch last {
	case yesterday:
		return streak + 1
	case today:
		if streak == 0 {
			return 1
		}
		return streak
	default:
		return 1
	}
}

func dateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
