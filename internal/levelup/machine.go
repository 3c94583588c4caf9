package levelup

import (
	"errors"
	"math/rand"
	"time"
)

// State is the lifecycle of one stage attempt.
type State int

const (
	// StateInProgress means a question is on screen awaiting an answer.
	StateInProgress State = iota
	// StateAnswerRevealed means the current question has been graded and the
	// explanation is showing, awaiting continue.
	StateAnswerRevealed
	// StateEvaluating means the last question was answered; results are being
	// persisted and the pass/fail decision is pending.
	StateEvaluating
	// StatePassed and StateFailed are the stage-result states.
	StatePassed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateAnswerRevealed:
		return "answer_revealed"
	case StateEvaluating:
		return "evaluating"
	case StatePassed:
		return "passed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// QuestionState is the per-question sub-state. The two-phase interaction
// (select, then confirm) is modeled explicitly so that grading a question
// without a staged selection, or re-selecting after reveal, is impossible.
type QuestionState int

const (
	QuestionUnanswered QuestionState = iota
	QuestionSelected
	QuestionRevealed
)

var (
	ErrNoSelection     = errors.New("levelup: no option selected")
	ErrAlreadyRevealed = errors.New("levelup: question already revealed")
	ErrNotRevealed     = errors.New("levelup: current question not yet revealed")
	ErrAttemptFinished = errors.New("levelup: attempt already finished")
	ErrNotEvaluating   = errors.New("levelup: attempt is not awaiting evaluation")
	ErrUnknownOption   = errors.New("levelup: option does not belong to current question")
	ErrNoQuestions     = errors.New("levelup: attempt needs at least one question")
	ErrInvalidStage    = errors.New("levelup: stage index has no difficulty")
)

// Option is one answer choice as presented to the user.
type Option struct {
	ID      uint
	Text    string
	Letter  string
	Correct bool
}

// Question is a stage question together with its (shuffled) options.
type Question struct {
	ID          uint
	Text        string
	Explanation string
	Difficulty  string
	Domain      string
	Options     []Option
}

// AnswerRecord is a graded answer buffered in memory until stage completion.
// Nothing is persisted from an attempt abandoned before the final question.
type AnswerRecord struct {
	QuestionID       uint
	SelectedOptionID uint
	IsCorrect        bool
	AnsweredAt       time.Time
}

// Reveal is the grading outcome handed back on confirm.
type Reveal struct {
	IsCorrect       bool
	CorrectOptionID uint
	Explanation     string
}

// Attempt is one in-memory stage attempt. It performs no IO; persistence and
// the pass/fail decision live with the caller. Not safe for concurrent use.
type Attempt struct {
	userID uint
	examID uint
	stage  int

	questions []Question
	index     int
	score     int

	state    State
	qstate   QuestionState
	selected uint

	answers   []AnswerRecord
	startedAt time.Time
	now       func() time.Time
}

// AttemptOption configures a new attempt.
type AttemptOption func(*attemptConfig)

type attemptConfig struct {
	rng *rand.Rand
	now func() time.Time
}

// WithRand sets the shuffle source. Tests pass a seeded source.
func WithRand(rng *rand.Rand) AttemptOption {
	return func(c *attemptConfig) { c.rng = rng }
}

// WithClock sets the wall clock used for answer timestamps and elapsed time.
func WithClock(now func() time.Time) AttemptOption {
	return func(c *attemptConfig) { c.now = now }
}

// NewAttempt builds an attempt over the given question set. Questions and
// each question's options are shuffled here, so retries re-randomize order.
func NewAttempt(userID, examID uint, stage int, questions []Question, opts ...AttemptOption) (*Attempt, error) {
	if _, ok := StageDifficulty(stage); !ok {
		return nil, ErrInvalidStage
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	cfg := attemptConfig{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	shuffled := make([]Question, len(questions))
	copy(shuffled, questions)
	shuffleQuestions(cfg.rng, shuffled)

	return &Attempt{
		userID:    userID,
		examID:    examID,
		stage:     stage,
		questions: shuffled,
		state:     StateInProgress,
		qstate:    QuestionUnanswered,
		startedAt: cfg.now(),
		now:       cfg.now,
	}, nil
}

func (a *Attempt) UserID() uint { return a.userID }
func (a *Attempt) ExamID() uint { return a.examID }
func (a *Attempt) Stage() int   { return a.stage }

// Difficulty returns the difficulty tag of this attempt's stage.
func (a *Attempt) Difficulty() string {
	d, _ := StageDifficulty(a.stage)
	return d
}

func (a *Attempt) State() State                 { return a.state }
func (a *Attempt) QuestionState() QuestionState { return a.qstate }
func (a *Attempt) Score() int                   { return a.score }
func (a *Attempt) TotalQuestions() int          { return len(a.questions) }
func (a *Attempt) QuestionIndex() int           { return a.index }

// Current returns the question on screen. ok is false once the attempt has
// moved past the last question.
func (a *Attempt) Current() (Question, bool) {
	if a.state != StateInProgress && a.state != StateAnswerRevealed {
		return Question{}, false
	}
	return a.questions[a.index], true
}

// SelectedOptionID returns the staged (not yet graded) choice, zero if none.
func (a *Attempt) SelectedOptionID() uint { return a.selected }

// Select stages a choice for the current question without grading it.
// Re-selecting before reveal replaces the staged choice; selecting after
// reveal is an illegal transition.
func (a *Attempt) Select(optionID uint) error {
	if a.state != StateInProgress {
		if a.state == StateAnswerRevealed {
			return ErrAlreadyRevealed
		}
		return ErrAttemptFinished
	}
	q := a.questions[a.index]
	if !hasOption(q, optionID) {
		return ErrUnknownOption
	}
	a.selected = optionID
	a.qstate = QuestionSelected
	return nil
}

// Confirm grades the staged selection, buffers the answer record, and moves
// the question into the revealed sub-state.
func (a *Attempt) Confirm() (Reveal, error) {
	if a.state != StateInProgress {
		if a.state == StateAnswerRevealed {
			return Reveal{}, ErrAlreadyRevealed
		}
		return Reveal{}, ErrAttemptFinished
	}
	if a.qstate != QuestionSelected {
		return Reveal{}, ErrNoSelection
	}

	q := a.questions[a.index]
	var correctID uint
	for _, opt := range q.Options {
		if opt.Correct {
			correctID = opt.ID
			break
		}
	}

	isCorrect := a.selected == correctID
	if isCorrect {
		a.score++
	}
	a.answers = append(a.answers, AnswerRecord{
		QuestionID:       q.ID,
		SelectedOptionID: a.selected,
		IsCorrect:        isCorrect,
		AnsweredAt:       a.now(),
	})
	a.qstate = QuestionRevealed
	a.state = StateAnswerRevealed

	return Reveal{IsCorrect: isCorrect, CorrectOptionID: correctID, Explanation: q.Explanation}, nil
}

// Next advances past a revealed question. After the last question the attempt
// enters StateEvaluating and the caller persists results and decides pass/fail.
func (a *Attempt) Next() error {
	if a.state != StateAnswerRevealed {
		if a.state == StateInProgress {
			return ErrNotRevealed
		}
		return ErrAttemptFinished
	}
	if a.index < len(a.questions)-1 {
		a.index++
		a.selected = 0
		a.qstate = QuestionUnanswered
		a.state = StateInProgress
		return nil
	}
	a.state = StateEvaluating
	return nil
}

// Finish records the pass/fail decision computed from the refreshed aggregate.
func (a *Attempt) Finish(passed bool) error {
	if a.state != StateEvaluating {
		return ErrNotEvaluating
	}
	if passed {
		a.state = StatePassed
	} else {
		a.state = StateFailed
	}
	return nil
}

// Answers returns a copy of the buffered answer records. Only meaningful once
// the attempt has left StateInProgress/StateAnswerRevealed for evaluation.
func (a *Attempt) Answers() []AnswerRecord {
	out := make([]AnswerRecord, len(a.answers))
	copy(out, a.answers)
	return out
}

// Elapsed is the wall-clock time since the attempt started, in whole seconds.
func (a *Attempt) Elapsed() int {
	return int(a.now().Sub(a.startedAt) / time.Second)
}

func hasOption(q Question, optionID uint) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
