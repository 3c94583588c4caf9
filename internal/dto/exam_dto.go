package dto

import "time"

type ExamSummaryDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	ShortName       string    `json:"short_name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	PassingScore    int       `json:"passing_score"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}
