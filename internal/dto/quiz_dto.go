package dto

import "time"

// --- Non-level-up quiz modes (quick_10, timed, missed, daily, custom) ---

type StartQuizRequest struct {
	ExamID        uint   `json:"exam_id" binding:"required"`
	Mode          string `json:"mode" binding:"required,oneof=daily quick_10 timed missed custom"`
	QuestionCount int    `json:"question_count" binding:"omitempty,min=1,max=100"`
}

type QuizOptionDTO struct {
	ID           uint   `json:"id"`
	OptionText   string `json:"option_text"`
	OptionLetter string `json:"option_letter"`
}

type QuizQuestionDTO struct {
	ID           uint            `json:"id"`
	QuestionText string          `json:"question_text"`
	Difficulty   string          `json:"difficulty"`
	Domain       string          `json:"domain,omitempty"`
	Options      []QuizOptionDTO `json:"options"`
}

type StartQuizResponseDTO struct {
	SessionID        uint              `json:"session_id"`
	Mode             string            `json:"mode"`
	TimeLimitSeconds *int              `json:"time_limit_seconds,omitempty"`
	Questions        []QuizQuestionDTO `json:"questions"`
}

type QuizAnswerDTO struct {
	QuestionID       uint `json:"question_id" binding:"required"`
	SelectedOptionID uint `json:"selected_option_id" binding:"required"`
}

type CompleteQuizRequest struct {
	Answers []QuizAnswerDTO `json:"answers" binding:"required,dive"`
}

type QuizResultDTO struct {
	SessionID        uint       `json:"session_id"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"total_questions"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// SessionSummaryDTO lists one row of the review/history screen.
type SessionSummaryDTO struct {
	ID               uint       `json:"id"`
	ExamID           uint       `json:"exam_id"`
	QuizType         string     `json:"quiz_type"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"total_questions"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// AnswerReviewDTO is one graded answer on the review screen, with the
// correct option and explanation disclosed.
type AnswerReviewDTO struct {
	QuestionID       uint   `json:"question_id"`
	QuestionText     string `json:"question_text"`
	SelectedOptionID uint   `json:"selected_option_id"`
	CorrectOptionID  uint   `json:"correct_option_id"`
	IsCorrect        bool   `json:"is_correct"`
	Explanation      string `json:"explanation,omitempty"`
}

// SessionDetailDTO is the full review view of one completed session.
type SessionDetailDTO struct {
	SessionSummaryDTO
	Answers []AnswerReviewDTO `json:"answers"`
}

// UserProgressDTO is the study-streak bookkeeping view.
type UserProgressDTO struct {
	ExamID            uint       `json:"exam_id"`
	QuestionsAnswered int        `json:"questions_answered"`
	QuestionsCorrect  int        `json:"questions_correct"`
	LastStudied       *time.Time `json:"last_studied,omitempty"`
	StudyStreak       int        `json:"study_streak"`
}

// StatsDTO backs the statistics dashboard.
type StatsDTO struct {
	Progress UserProgressDTO   `json:"progress"`
	LevelUp  AccuracyReportDTO `json:"level_up"`
}

type QuizModeDTO struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
