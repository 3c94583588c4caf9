package repository

import (
	"time"

	"github.com/pthach/certclimb/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserProgressRepository interface {
	// Find returns gorm.ErrRecordNotFound when the user has no row for the
	// exam yet; callers treat that as stage 0.
	Find(userID, examID uint) (*model.UserProgress, error)
	// AdvanceStage upserts the (user, exam) row and raises the stage index.
	// GREATEST keeps the index monotone, which also makes a retried call with
	// the same value a no-op.
	AdvanceStage(userID, examID uint, newStage int) error
	// ResetStage forces the stage index back to 0.
	ResetStage(userID, examID uint) error
	// Save upserts the full row; used by the study-streak bookkeeping.
	Save(progress *model.UserProgress) error
}

type userProgressRepository struct {
	db *gorm.DB
}

func NewUserProgressRepository(db *gorm.DB) UserProgressRepository {
	return &userProgressRepository{db: db}
}

func (r *userProgressRepository) Find(userID, examID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.db.Where("user_id = ? AND exam_id = ?", userID, examID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *userProgressRepository) AdvanceStage(userID, examID uint, newStage int) error {
	progress := model.UserProgress{
		UserID:       userID,
		ExamID:       examID,
		LevelUpStage: newStage,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "exam_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"level_up_stage": gorm.Expr("GREATEST(user_progresses.level_up_stage, ?)", newStage),
			"updated_at":     time.Now(),
		}),
	}).Create(&progress).Error
}

func (r *userProgressRepository) ResetStage(userID, examID uint) error {
	progress := model.UserProgress{
		UserID: userID,
		ExamID: examID,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "exam_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"level_up_stage": 0,
			"updated_at":     time.Now(),
		}),
	}).Create(&progress).Error
}

func (r *userProgressRepository) Save(progress *model.UserProgress) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "exam_id"}},
		UpdateAll: true,
	}).Create(progress).Error
}
