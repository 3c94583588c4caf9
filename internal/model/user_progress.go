package model

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress holds per-(user, exam) level-up stage plus study bookkeeping.
// Stage indices: 0 = easy, 1 = medium, 2 = hard, 3 = all complete.
// LevelUpStage is monotonically non-decreasing except on explicit reset.
type UserProgress struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	UserID            uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_exam"`
	ExamID            uint           `json:"exam_id" gorm:"not null;uniqueIndex:idx_user_exam"`
	LevelUpStage      int            `json:"level_up_stage" gorm:"not null;default:0"`
	QuestionsAnswered int            `json:"questions_answered" gorm:"not null;default:0"`
	QuestionsCorrect  int            `json:"questions_correct" gorm:"not null;default:0"`
	LastStudied       *time.Time     `json:"last_studied,omitempty"`
	StudyStreak       int            `json:"study_streak" gorm:"not null;default:0"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
