package dto

// --- Level-Up attempt flow ---

// StartAttemptRequest begins (or retries) a stage attempt for an exam.
type StartAttemptRequest struct {
	ExamID uint `json:"exam_id" binding:"required"`
}

// SelectOptionRequest stages a choice for the current question. Nothing is
// graded until the reveal call.
type SelectOptionRequest struct {
	OptionID uint `json:"option_id" binding:"required"`
}

// SkipStageRequest advances past a stage whose filtered question set is empty.
type SkipStageRequest struct {
	ExamID uint `json:"exam_id" binding:"required"`
}

// ResetProgressRequest destroys all level-up history for the exam. Confirm
// must be true; the destructive path is never the default.
type ResetProgressRequest struct {
	ExamID  uint `json:"exam_id" binding:"required"`
	Confirm bool `json:"confirm"`
}

// LevelUpOptionDTO is an option as shown during an attempt; correctness is
// only disclosed by the reveal response.
type LevelUpOptionDTO struct {
	ID           uint   `json:"id"`
	OptionText   string `json:"option_text"`
	OptionLetter string `json:"option_letter"`
}

type LevelUpQuestionDTO struct {
	ID           uint               `json:"id"`
	QuestionText string             `json:"question_text"`
	Difficulty   string             `json:"difficulty"`
	Domain       string             `json:"domain,omitempty"`
	Options      []LevelUpOptionDTO `json:"options"`
}

// LevelUpAttemptDTO is the machine state rendered for the client.
type LevelUpAttemptDTO struct {
	AttemptID        string              `json:"attempt_id"`
	ExamID           uint                `json:"exam_id"`
	Stage            int                 `json:"stage"`
	Difficulty       string              `json:"difficulty"`
	State            string              `json:"state"`
	QuestionIndex    int                 `json:"question_index"`
	TotalQuestions   int                 `json:"total_questions"`
	Score            int                 `json:"score"`
	SelectedOptionID uint                `json:"selected_option_id,omitempty"`
	Question         *LevelUpQuestionDTO `json:"question,omitempty"`
}

// StartAttemptResponseDTO distinguishes a live attempt from the two
// non-attempt outcomes: all stages already complete, or an empty stage
// (every question at this difficulty already mastered) offering a skip.
type StartAttemptResponseDTO struct {
	Attempt           *LevelUpAttemptDTO `json:"attempt,omitempty"`
	AllStagesComplete bool               `json:"all_stages_complete"`
	EmptyStage        bool               `json:"empty_stage"`
	Stage             int                `json:"stage"`
	Difficulty        string             `json:"difficulty,omitempty"`
}

// RevealResponseDTO is the grading outcome for the confirmed selection.
type RevealResponseDTO struct {
	IsCorrect       bool   `json:"is_correct"`
	CorrectOptionID uint   `json:"correct_option_id"`
	Explanation     string `json:"explanation"`
	Score           int    `json:"score"`
}

// DifficultyStatsDTO mirrors the aggregator output for one difficulty.
type DifficultyStatsDTO struct {
	Accuracy int `json:"accuracy"`
	Correct  int `json:"correct"`
	Total    int `json:"total"`
}

type AccuracyReportDTO struct {
	Easy   DifficultyStatsDTO `json:"easy"`
	Medium DifficultyStatsDTO `json:"medium"`
	Hard   DifficultyStatsDTO `json:"hard"`
}

// StageResultDTO is returned when the final question of a stage has been
// answered and the attempt has been persisted and evaluated.
type StageResultDTO struct {
	SessionID         uint               `json:"session_id"`
	Passed            bool               `json:"passed"`
	Score             int                `json:"score"`
	TotalQuestions    int                `json:"total_questions"`
	TimeTakenSeconds  int                `json:"time_taken_seconds"`
	Difficulty        string             `json:"difficulty"`
	Accuracy          DifficultyStatsDTO `json:"accuracy"`
	NewStage          int                `json:"new_stage"`
	AllStagesComplete bool               `json:"all_stages_complete"`
	Warnings          []string           `json:"warnings,omitempty"`
}

// NextResponseDTO carries either the next question's attempt state or, after
// the last question, the stage result.
type NextResponseDTO struct {
	Attempt *LevelUpAttemptDTO `json:"attempt,omitempty"`
	Result  *StageResultDTO    `json:"result,omitempty"`
}

// LevelUpProgressDTO is the stage + accuracy dashboard view.
type LevelUpProgressDTO struct {
	ExamID            uint              `json:"exam_id"`
	Stage             int               `json:"stage"`
	Difficulty        string            `json:"difficulty,omitempty"`
	AllStagesComplete bool              `json:"all_stages_complete"`
	Accuracy          AccuracyReportDTO `json:"accuracy"`
}
