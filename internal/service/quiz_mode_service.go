package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	quizModesCacheKey = "quiz_modes:active"
	quizModesCacheTTL = 5 * time.Minute
)

// QuizModeService serves the home-screen mode catalog through a read-through
// Redis cache. Cache failures degrade to the database; they are never fatal.
type QuizModeService interface {
	ActiveModes(ctx context.Context) ([]dto.QuizModeDTO, error)
}

type quizModeService struct {
	modeRepo repository.QuizModeRepository
	rdb      *redis.Client
}

func NewQuizModeService(modeRepo repository.QuizModeRepository, rdb *redis.Client) QuizModeService {
	return &quizModeService{modeRepo: modeRepo, rdb: rdb}
}

func (s *quizModeService) ActiveModes(ctx context.Context) ([]dto.QuizModeDTO, error) {
	if cached, err := s.rdb.Get(ctx, quizModesCacheKey).Bytes(); err == nil {
		var modes []dto.QuizModeDTO
		if err := json.Unmarshal(cached, &modes); err != nil {
			log.Warn().Err(err).Msg("quiz modes cache entry is corrupt; refetching")
		} else {
			return modes, nil
		}
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("quiz modes cache read failed")
	}

	records, err := s.modeRepo.FindActive()
	if err != nil {
		return nil, err
	}
	modes := make([]dto.QuizModeDTO, len(records))
	for i, m := range records {
		modes[i] = dto.QuizModeDTO{Slug: m.Slug, Name: m.Name, Description: m.Description}
	}

	if payload, err := json.Marshal(modes); err == nil {
		if err := s.rdb.Set(ctx, quizModesCacheKey, payload, quizModesCacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("quiz modes cache write failed")
		}
	}
	return modes, nil
}
