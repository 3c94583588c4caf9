package service_test

import (
	"errors"
	"testing"

	"github.com/pthach/certclimb/config"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/service"
)

type levelUpFixture struct {
	questions *fakeQuestionRepo
	sessions  *fakeSessionRepo
	answers   *fakeAnswerRepo
	progress  *fakeProgressRepo
	svc       service.LevelUpService
}

// seedStagedBank builds a bank where each question's options are the four IDs
// questionID*10+1..4 and the first of them is correct, so tests can derive
// the correct option from the question ID alone.
func seedStagedBank(repo *fakeQuestionRepo, examID uint, perDifficulty int) {
	id := uint(len(repo.questions))
	for _, difficulty := range []string{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		for i := 0; i < perDifficulty; i++ {
			id++
			base := id * 10
			repo.questions = append(repo.questions, model.Question{
				ID: id, ExamID: examID, Difficulty: difficulty, QuestionText: "q",
				Options: []model.QuestionOption{
					{ID: base + 1, QuestionID: id, OptionLetter: "A", IsCorrect: true},
					{ID: base + 2, QuestionID: id, OptionLetter: "B"},
					{ID: base + 3, QuestionID: id, OptionLetter: "C"},
					{ID: base + 4, QuestionID: id, OptionLetter: "D"},
				},
			})
		}
	}
}

func newLevelUpFixture(t *testing.T, perDifficulty int) *levelUpFixture {
	t.Helper()
	f := &levelUpFixture{
		questions: &fakeQuestionRepo{},
		sessions:  &fakeSessionRepo{},
		answers:   &fakeAnswerRepo{},
		progress:  newFakeProgressRepo(),
	}
	seedStagedBank(f.questions, testExamID, perDifficulty)

	cfg := &config.Config{}
	cfg.LevelUp.QuestionCount = 10
	cfg.LevelUp.PassThreshold = 70

	accuracySvc := service.NewAccuracyService(f.sessions, f.answers, f.questions)
	progressSvc := service.NewProgressService(f.progress)
	f.svc = service.NewLevelUpService(f.questions, f.sessions, f.answers, f.progress, accuracySvc, progressSvc, cfg)
	return f
}

// playStage walks one attempt to completion, answering the first
// correctCount questions correctly and the rest wrong.
func playStage(t *testing.T, svc service.LevelUpService, userID uint, correctCount int) *dto.StageResultDTO {
	t.Helper()
	start, err := svc.StartAttempt(userID, testExamID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if start.Attempt == nil {
		t.Fatalf("expected a live attempt, got %+v", start)
	}

	attempt := start.Attempt
	answered := 0
	for {
		if attempt.Question == nil {
			t.Fatal("live attempt has no current question")
		}
		correctID := attempt.Question.ID*10 + 1
		pick := correctID
		if answered >= correctCount {
			pick = correctID + 1
		}
		if _, err := svc.SelectOption(userID, attempt.AttemptID, pick); err != nil {
			t.Fatalf("SelectOption: %v", err)
		}
		if _, err := svc.RevealAnswer(userID, attempt.AttemptID); err != nil {
			t.Fatalf("RevealAnswer: %v", err)
		}
		answered++

		next, err := svc.NextQuestion(userID, attempt.AttemptID)
		if err != nil {
			t.Fatalf("NextQuestion: %v", err)
		}
		if next.Result != nil {
			return next.Result
		}
		attempt = next.Attempt
	}
}

func TestStartAttemptTerminalStage(t *testing.T) {
	f := newLevelUpFixture(t, 10)
	if err := f.progress.AdvanceStage(testUserID, testExamID, 3); err != nil {
		t.Fatal(err)
	}
	// A question fetch at the terminal stage would surface this error.
	f.questions.findErr = errors.New("must not fetch questions")

	resp, err := f.svc.StartAttempt(testUserID, testExamID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if !resp.AllStagesComplete || resp.Attempt != nil {
		t.Errorf("resp = %+v, want all-stages-complete with no attempt", resp)
	}
}

func TestStartAttemptExcludesMasteredQuestions(t *testing.T) {
	f := newLevelUpFixture(t, 10)

	// Questions 1 and 2 answered correctly in a prior level-up session.
	addLevelUpSession(f.sessions, f.answers, testUserID, testExamID, map[uint]bool{1: true, 2: true, 3: false})

	resp, err := f.svc.StartAttempt(testUserID, testExamID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if resp.Attempt == nil {
		t.Fatalf("expected a live attempt, got %+v", resp)
	}

	excluded := map[uint]bool{}
	for _, id := range f.questions.lastExcludeIDs {
		excluded[id] = true
	}
	if !excluded[1] || !excluded[2] {
		t.Errorf("exclusion list %v missing mastered questions 1, 2", f.questions.lastExcludeIDs)
	}
	if excluded[3] {
		t.Error("incorrectly answered question 3 must stay in the pool")
	}
	if resp.Attempt.TotalQuestions != 8 {
		t.Errorf("TotalQuestions = %d, want 8", resp.Attempt.TotalQuestions)
	}
}

func TestStartAttemptEmptyStageOffersSkip(t *testing.T) {
	f := newLevelUpFixture(t, 2)

	// Master the entire easy bank.
	addLevelUpSession(f.sessions, f.answers, testUserID, testExamID, map[uint]bool{1: true, 2: true})

	resp, err := f.svc.StartAttempt(testUserID, testExamID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if !resp.EmptyStage || resp.Attempt != nil {
		t.Fatalf("resp = %+v, want empty-stage offer", resp)
	}

	progress, err := f.svc.SkipStage(testUserID, testExamID)
	if err != nil {
		t.Fatalf("SkipStage: %v", err)
	}
	if progress.Stage != 1 || progress.Difficulty != model.DifficultyMedium {
		t.Errorf("progress = %+v, want stage 1 medium", progress)
	}
}

func TestSkipStageRejectedWhenQuestionsRemain(t *testing.T) {
	f := newLevelUpFixture(t, 10)
	if _, err := f.svc.SkipStage(testUserID, testExamID); !errors.Is(err, service.ErrStageNotEmpty) {
		t.Errorf("expected ErrStageNotEmpty, got %v", err)
	}
	if p, err := f.progress.Find(testUserID, testExamID); err == nil && p.LevelUpStage != 0 {
		t.Errorf("stage advanced to %d by a rejected skip", p.LevelUpStage)
	}
}

func TestStagePassAdvances(t *testing.T) {
	f := newLevelUpFixture(t, 10)

	result := playStage(t, f.svc, testUserID, 8)
	if !result.Passed {
		t.Fatalf("result = %+v, want pass at 80%%", result)
	}
	if result.NewStage != 1 || result.AllStagesComplete {
		t.Errorf("NewStage = %d, AllStagesComplete = %v; want 1, false", result.NewStage, result.AllStagesComplete)
	}
	if result.Accuracy.Accuracy != 80 {
		t.Errorf("accuracy = %d, want 80", result.Accuracy.Accuracy)
	}

	p, err := f.progress.Find(testUserID, testExamID)
	if err != nil {
		t.Fatalf("progress not persisted: %v", err)
	}
	if p.LevelUpStage != 1 {
		t.Errorf("persisted stage = %d, want 1", p.LevelUpStage)
	}
	if len(f.sessions.sessions) != 1 {
		t.Fatalf("persisted %d sessions, want 1", len(f.sessions.sessions))
	}
	if got := f.sessions.sessions[0]; got.QuizType != model.QuizTypeLevelUp || got.Score != 8 || got.CompletedAt == nil {
		t.Errorf("session = %+v, want completed level_up with score 8", got)
	}
	if len(f.answers.answers) != 10 {
		t.Errorf("persisted %d answers, want 10", len(f.answers.answers))
	}
}

func TestStageFailKeepsStage(t *testing.T) {
	f := newLevelUpFixture(t, 10)

	result := playStage(t, f.svc, testUserID, 6)
	if result.Passed {
		t.Fatalf("result = %+v, want fail at 60%%", result)
	}
	if result.NewStage != 0 {
		t.Errorf("NewStage = %d, want 0", result.NewStage)
	}
	if p, err := f.progress.Find(testUserID, testExamID); err == nil && p.LevelUpStage != 0 {
		t.Errorf("persisted stage = %d, want 0", p.LevelUpStage)
	}
	// The session is still persisted; the history feeds the next retry.
	if len(f.sessions.sessions) != 1 {
		t.Errorf("persisted %d sessions, want 1", len(f.sessions.sessions))
	}
}

// A failed stage leaves its correct answers in the aggregate, so a retry over
// the shrunken pool can cross the threshold cumulatively.
func TestFailThenRetryPassesCumulatively(t *testing.T) {
	f := newLevelUpFixture(t, 10)

	first := playStage(t, f.svc, testUserID, 5)
	if first.Passed || first.Accuracy.Accuracy != 50 {
		t.Fatalf("first attempt = %+v, want 50%% fail", first)
	}

	// Retry sees only the 5 unmastered questions; 4 of 5 correct brings the
	// cumulative count to 9 of the 10-question bank.
	second := playStage(t, f.svc, testUserID, 4)
	if second.TotalQuestions != 5 {
		t.Fatalf("retry saw %d questions, want 5", second.TotalQuestions)
	}
	if !second.Passed || second.Accuracy.Accuracy != 90 {
		t.Errorf("retry = %+v, want cumulative 90%% pass", second)
	}
}

func TestAnswerInsertFailureKeepsSession(t *testing.T) {
	f := newLevelUpFixture(t, 10)
	f.answers.insertErr = errors.New("disk full")

	result := playStage(t, f.svc, testUserID, 8)
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the lost answer batch")
	}
	// The session row stays despite the lost answers; there is no
	// compensating delete.
	if len(f.sessions.sessions) != 1 {
		t.Fatalf("persisted %d sessions, want 1", len(f.sessions.sessions))
	}
	if len(f.answers.answers) != 0 {
		t.Errorf("persisted %d answers, want 0", len(f.answers.answers))
	}
	// With no answer events the aggregate sees 0 correct, so the stage fails.
	if result.Passed {
		t.Error("stage passed although the aggregate saw no answers")
	}
}

func TestSessionCreateFailureIsFatal(t *testing.T) {
	f := newLevelUpFixture(t, 1)
	f.sessions.createErr = errors.New("db down")

	start, err := f.svc.StartAttempt(testUserID, testExamID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	attemptID := start.Attempt.AttemptID
	q := start.Attempt.Question
	if _, err := f.svc.SelectOption(testUserID, attemptID, q.ID*10+1); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RevealAnswer(testUserID, attemptID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.NextQuestion(testUserID, attemptID); err == nil {
		t.Fatal("expected an error when the session cannot be created")
	}
	if len(f.answers.answers) != 0 {
		t.Error("answers must not be written without a session")
	}
}

func TestResetProgress(t *testing.T) {
	f := newLevelUpFixture(t, 10)

	if result := playStage(t, f.svc, testUserID, 8); !result.Passed {
		t.Fatalf("setup stage should pass, got %+v", result)
	}

	if err := f.svc.ResetProgress(testUserID, testExamID); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}

	p, err := f.progress.Find(testUserID, testExamID)
	if err != nil {
		t.Fatalf("progress row missing after reset: %v", err)
	}
	if p.LevelUpStage != 0 {
		t.Errorf("stage = %d after reset, want 0", p.LevelUpStage)
	}
	if len(f.sessions.sessions) != 0 {
		t.Errorf("%d level-up sessions survive the reset, want 0", len(f.sessions.sessions))
	}

	// A fresh start sees the full, unfiltered bank again.
	resp, err := f.svc.StartAttempt(testUserID, testExamID)
	if err != nil {
		t.Fatalf("StartAttempt after reset: %v", err)
	}
	if resp.Attempt == nil || resp.Attempt.TotalQuestions != 10 {
		t.Errorf("post-reset attempt = %+v, want full 10-question stage", resp.Attempt)
	}
}

func TestAttemptOwnership(t *testing.T) {
	f := newLevelUpFixture(t, 10)
	start, err := f.svc.StartAttempt(testUserID, testExamID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := f.svc.GetAttempt(testUserID+1, start.Attempt.AttemptID); !errors.Is(err, service.ErrAttemptNotFound) {
		t.Errorf("expected ErrAttemptNotFound for another user, got %v", err)
	}
}
