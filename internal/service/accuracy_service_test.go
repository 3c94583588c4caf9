package service_test

import (
	"testing"
	"time"

	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/service"
)

const (
	testUserID = uint(42)
	testExamID = uint(1)
)

func seedBank(repo *fakeQuestionRepo, examID uint, perDifficulty int) {
	id := uint(len(repo.questions))
	for _, difficulty := range []string{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		for i := 0; i < perDifficulty; i++ {
			id++
			repo.questions = append(repo.questions, model.Question{
				ID: id, ExamID: examID, Difficulty: difficulty, QuestionText: "q",
			})
		}
	}
}

func addLevelUpSession(sessions *fakeSessionRepo, answers *fakeAnswerRepo, userID, examID uint, results map[uint]bool) {
	session := model.QuizSession{UserID: userID, ExamID: examID, QuizType: model.QuizTypeLevelUp}
	if err := sessions.Create(&session); err != nil {
		panic(err)
	}
	now := time.Now()
	batch := make([]model.UserAnswer, 0, len(results))
	for questionID, correct := range results {
		batch = append(batch, model.UserAnswer{
			UserID:        userID,
			QuizSessionID: session.ID,
			QuestionID:    questionID,
			IsCorrect:     correct,
			AnsweredAt:    now,
		})
	}
	if err := answers.BatchInsert(batch); err != nil {
		panic(err)
	}
}

func TestAccuracyEmptyHistory(t *testing.T) {
	questions := &fakeQuestionRepo{}
	seedBank(questions, testExamID, 10)
	svc := service.NewAccuracyService(&fakeSessionRepo{}, &fakeAnswerRepo{}, questions)

	report, err := svc.LevelUpAccuracyByDifficulty(testUserID, testExamID)
	if err != nil {
		t.Fatalf("LevelUpAccuracyByDifficulty: %v", err)
	}
	for _, difficulty := range []string{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		stats, ok := report[difficulty]
		if !ok {
			t.Fatalf("missing %s entry", difficulty)
		}
		if stats.Accuracy != 0 || stats.Correct != 0 || stats.Total != 0 {
			t.Errorf("%s = %+v, want all zero", difficulty, stats)
		}
	}
}

func TestAccuracyBankSizeDenominator(t *testing.T) {
	questions := &fakeQuestionRepo{}
	seedBank(questions, testExamID, 10) // easy question IDs 1..10
	sessions := &fakeSessionRepo{}
	answers := &fakeAnswerRepo{}

	// 7 of 10 easy questions answered correctly in one pass.
	results := map[uint]bool{}
	for id := uint(1); id <= 10; id++ {
		results[id] = id <= 7
	}
	addLevelUpSession(sessions, answers, testUserID, testExamID, results)

	svc := service.NewAccuracyService(sessions, answers, questions)
	report, err := svc.LevelUpAccuracyByDifficulty(testUserID, testExamID)
	if err != nil {
		t.Fatalf("LevelUpAccuracyByDifficulty: %v", err)
	}

	easy := report[model.DifficultyEasy]
	if easy.Correct != 7 || easy.Total != 10 || easy.Accuracy != 70 {
		t.Errorf("easy = %+v, want 7/10 = 70", easy)
	}
	if medium := report[model.DifficultyMedium]; medium.Accuracy != 0 || medium.Total != 10 {
		t.Errorf("medium = %+v, want untouched 0/10", medium)
	}
}

// A question answered correctly in two sessions counts twice against the bank
// size. Cumulative retries can therefore push accuracy past a single pass.
func TestAccuracyDuplicateEventsAccumulate(t *testing.T) {
	questions := &fakeQuestionRepo{}
	seedBank(questions, testExamID, 10)
	sessions := &fakeSessionRepo{}
	answers := &fakeAnswerRepo{}

	// Failed first attempt: 5/10 correct.
	first := map[uint]bool{}
	for id := uint(1); id <= 10; id++ {
		first[id] = id <= 5
	}
	addLevelUpSession(sessions, answers, testUserID, testExamID, first)

	// Retry on the 5 unmastered questions plus one repeat: 4 correct plus
	// a repeat of question 1.
	second := map[uint]bool{6: true, 7: true, 8: true, 9: true, 10: false, 1: true}
	addLevelUpSession(sessions, answers, testUserID, testExamID, second)

	svc := service.NewAccuracyService(sessions, answers, questions)
	report, err := svc.LevelUpAccuracyByDifficulty(testUserID, testExamID)
	if err != nil {
		t.Fatalf("LevelUpAccuracyByDifficulty: %v", err)
	}

	// 5 + 5 correct events over a bank of 10: the repeat of question 1 is not
	// deduplicated.
	easy := report[model.DifficultyEasy]
	if easy.Correct != 10 || easy.Total != 10 || easy.Accuracy != 100 {
		t.Errorf("easy = %+v, want 10/10 = 100", easy)
	}
}

func TestAccuracyCumulativeRetryCrossesThreshold(t *testing.T) {
	questions := &fakeQuestionRepo{}
	seedBank(questions, testExamID, 10)
	sessions := &fakeSessionRepo{}
	answers := &fakeAnswerRepo{}

	// 5/10 then 4/6 on retry: 9 correct events over the 10-question bank.
	first := map[uint]bool{}
	for id := uint(1); id <= 10; id++ {
		first[id] = id <= 5
	}
	addLevelUpSession(sessions, answers, testUserID, testExamID, first)
	addLevelUpSession(sessions, answers, testUserID, testExamID,
		map[uint]bool{6: true, 7: true, 8: true, 9: true, 10: false, 1: false})

	svc := service.NewAccuracyService(sessions, answers, questions)
	report, err := svc.LevelUpAccuracyByDifficulty(testUserID, testExamID)
	if err != nil {
		t.Fatalf("LevelUpAccuracyByDifficulty: %v", err)
	}
	if easy := report[model.DifficultyEasy]; easy.Accuracy != 90 {
		t.Errorf("easy accuracy = %d, want cumulative 90", easy.Accuracy)
	}
}

func TestAccuracyRounding(t *testing.T) {
	questions := &fakeQuestionRepo{}
	seedBank(questions, testExamID, 3) // easy IDs 1..3
	sessions := &fakeSessionRepo{}
	answers := &fakeAnswerRepo{}

	addLevelUpSession(sessions, answers, testUserID, testExamID, map[uint]bool{1: true, 2: true, 3: false})

	svc := service.NewAccuracyService(sessions, answers, questions)
	report, err := svc.LevelUpAccuracyByDifficulty(testUserID, testExamID)
	if err != nil {
		t.Fatalf("LevelUpAccuracyByDifficulty: %v", err)
	}
	// 2/3 rounds to 67, not truncates to 66.
	if easy := report[model.DifficultyEasy]; easy.Accuracy != 67 {
		t.Errorf("easy accuracy = %d, want 67", easy.Accuracy)
	}
}

func TestAccuracyIgnoresOtherExams(t *testing.T) {
	questions := &fakeQuestionRepo{}
	seedBank(questions, testExamID, 10) // exam 1: IDs 1..30
	seedBank(questions, 2, 10)          // exam 2: IDs 31..60
	sessions := &fakeSessionRepo{}
	answers := &fakeAnswerRepo{}

	// Level-up history spans both exams; only exam 1 answers may count.
	addLevelUpSession(sessions, answers, testUserID, testExamID, map[uint]bool{1: true, 2: true})
	addLevelUpSession(sessions, answers, testUserID, 2, map[uint]bool{31: true, 32: true, 33: true})

	svc := service.NewAccuracyService(sessions, answers, questions)
	report, err := svc.LevelUpAccuracyByDifficulty(testUserID, testExamID)
	if err != nil {
		t.Fatalf("LevelUpAccuracyByDifficulty: %v", err)
	}
	if easy := report[model.DifficultyEasy]; easy.Correct != 2 || easy.Total != 10 {
		t.Errorf("easy = %+v, want 2/10 with cross-exam answers dropped", easy)
	}
}
