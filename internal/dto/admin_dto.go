package dto

import "time"

// OptionCreateDTO is used within QuestionCreateDTO for admin question entry.
type OptionCreateDTO struct {
	OptionText   string `json:"option_text" binding:"required"`
	OptionLetter string `json:"option_letter" binding:"required,len=1"`
	IsCorrect    bool   `json:"is_correct"`
}

type QuestionCreateDTO struct {
	ExamID       uint              `json:"exam_id"`
	QuestionText string            `json:"question_text" binding:"required"`
	Explanation  string            `json:"explanation"`
	Difficulty   string            `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Domain       string            `json:"domain"`
	Options      []OptionCreateDTO `json:"options" binding:"required,min=2,max=6,dive"`
}

// ExamCreateDTO lets an admin create an exam, optionally with its question
// bank in one request.
type ExamCreateDTO struct {
	Title           string              `json:"title" binding:"required"`
	ShortName       string              `json:"short_name" binding:"required"`
	Description     string              `json:"description"`
	Category        string              `json:"category"`
	PassingScore    int                 `json:"passing_score" binding:"omitempty,min=1,max=100"`
	DurationMinutes int                 `json:"duration_minutes" binding:"omitempty,min=1"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
}

// OptionAdminDTO includes correctness; admin-only view.
type OptionAdminDTO struct {
	ID           uint   `json:"id"`
	OptionText   string `json:"option_text"`
	OptionLetter string `json:"option_letter"`
	IsCorrect    bool   `json:"is_correct"`
}

type QuestionAdminDTO struct {
	ID           uint             `json:"id"`
	ExamID       uint             `json:"exam_id"`
	QuestionText string           `json:"question_text"`
	Explanation  string           `json:"explanation,omitempty"`
	Difficulty   string           `json:"difficulty"`
	Domain       string           `json:"domain,omitempty"`
	Options      []OptionAdminDTO `json:"options,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type ExamAdminDTO struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	ShortName   string             `json:"short_name"`
	Description string             `json:"description,omitempty"`
	Category    string             `json:"category,omitempty"`
	Questions   []QuestionAdminDTO `json:"questions,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}
