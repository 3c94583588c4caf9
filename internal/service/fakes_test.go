package service_test

import (
	"sort"

	"github.com/pthach/certclimb/internal/model"
	"gorm.io/gorm"
)

// In-memory repository fakes backed by slices. Error fields inject failures
// for the degraded-path tests.

type fakeQuestionRepo struct {
	questions []model.Question

	findErr error

	lastExcludeIDs []uint
}

func (r *fakeQuestionRepo) Create(q *model.Question) error {
	q.ID = uint(len(r.questions) + 1)
	r.questions = append(r.questions, *q)
	return nil
}

func (r *fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	for _, q := range r.questions {
		if q.ID == id {
			out := q
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) FindByExamAndDifficulty(examID uint, difficulty string, excludeIDs []uint, limit int) ([]model.Question, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.lastExcludeIDs = excludeIDs
	excluded := make(map[uint]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []model.Question
	for _, q := range r.questions {
		if q.ExamID != examID || q.Difficulty != difficulty || excluded[q.ID] {
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindByExam(examID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range r.questions {
		if q.ExamID == examID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindUniqueRandom(examID, userID uint, limit int) ([]model.Question, error) {
	var out []model.Question
	for _, q := range r.questions {
		if q.ExamID != examID {
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindByIDs(ids []uint) ([]model.Question, error) {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []model.Question
	for _, q := range r.questions {
		if wanted[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) CountByDifficulty(examID uint) (map[string]int, error) {
	counts := map[string]int{}
	for _, q := range r.questions {
		if q.ExamID == examID {
			counts[q.Difficulty]++
		}
	}
	return counts, nil
}

func (r *fakeQuestionRepo) DifficultiesByIDs(examID uint, ids []uint) (map[uint]string, error) {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := map[uint]string{}
	for _, q := range r.questions {
		if q.ExamID == examID && wanted[q.ID] {
			out[q.ID] = q.Difficulty
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) Update(q *model.Question) error {
	for i := range r.questions {
		if r.questions[i].ID == q.ID {
			r.questions[i] = *q
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) Delete(id uint) error {
	for i := range r.questions {
		if r.questions[i].ID == id {
			r.questions = append(r.questions[:i], r.questions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeSessionRepo struct {
	sessions []model.QuizSession
	nextID   uint

	// answerSource, when set, backs FindByIDWithAnswers.
	answerSource *fakeAnswerRepo

	createErr error
	listErr   error
}

func (r *fakeSessionRepo) Create(s *model.QuizSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	s.ID = r.nextID
	r.sessions = append(r.sessions, *s)
	return nil
}

func (r *fakeSessionRepo) Update(s *model.QuizSession) error {
	for i := range r.sessions {
		if r.sessions[i].ID == s.ID {
			r.sessions[i] = *s
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) FindByID(id uint) (*model.QuizSession, error) {
	for _, s := range r.sessions {
		if s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) FindByIDWithAnswers(id uint) (*model.QuizSession, error) {
	session, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if r.answerSource != nil {
		for _, a := range r.answerSource.answers {
			if a.QuizSessionID == id {
				session.Answers = append(session.Answers, a)
			}
		}
	}
	return session, nil
}

func (r *fakeSessionRepo) FindIDsByUserAndType(userID uint, quizType string) ([]uint, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var ids []uint
	for _, s := range r.sessions {
		if s.UserID == userID && s.QuizType == quizType {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

func (r *fakeSessionRepo) FindAllByUser(userID uint, examID *uint) ([]model.QuizSession, error) {
	var out []model.QuizSession
	for _, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		if examID != nil && s.ExamID != *examID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) DeleteByUserExamAndType(userID, examID uint, quizType string) error {
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.UserID == userID && s.ExamID == examID && s.QuizType == quizType {
			continue
		}
		kept = append(kept, s)
	}
	r.sessions = kept
	return nil
}

type fakeAnswerRepo struct {
	answers []model.UserAnswer

	insertErr error
}

func (r *fakeAnswerRepo) BatchInsert(answers []model.UserAnswer) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.answers = append(r.answers, answers...)
	return nil
}

func (r *fakeAnswerRepo) FindBySessionIDs(userID uint, sessionIDs []uint) ([]model.UserAnswer, error) {
	wanted := make(map[uint]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	var out []model.UserAnswer
	for _, a := range r.answers {
		if a.UserID == userID && wanted[a.QuizSessionID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) DistinctCorrectQuestionIDs(userID uint, sessionIDs []uint) ([]uint, error) {
	wanted := make(map[uint]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	seen := map[uint]bool{}
	for _, a := range r.answers {
		if a.UserID == userID && a.IsCorrect && wanted[a.QuizSessionID] {
			seen[a.QuestionID] = true
		}
	}
	ids := make([]uint, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeAnswerRepo) FindLatestPerQuestion(userID uint) ([]model.UserAnswer, error) {
	latest := map[uint]model.UserAnswer{}
	for _, a := range r.answers {
		if a.UserID != userID {
			continue
		}
		if prev, ok := latest[a.QuestionID]; !ok || a.AnsweredAt.After(prev.AnsweredAt) {
			latest[a.QuestionID] = a
		}
	}
	out := make([]model.UserAnswer, 0, len(latest))
	for _, a := range latest {
		out = append(out, a)
	}
	return out, nil
}

type fakeProgressRepo struct {
	records map[[2]uint]*model.UserProgress

	advanceErr error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[[2]uint]*model.UserProgress{}}
}

func (r *fakeProgressRepo) Find(userID, examID uint) (*model.UserProgress, error) {
	if p, ok := r.records[[2]uint{userID, examID}]; ok {
		out := *p
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProgressRepo) AdvanceStage(userID, examID uint, newStage int) error {
	if r.advanceErr != nil {
		return r.advanceErr
	}
	key := [2]uint{userID, examID}
	p, ok := r.records[key]
	if !ok {
		p = &model.UserProgress{UserID: userID, ExamID: examID}
		r.records[key] = p
	}
	if newStage > p.LevelUpStage {
		p.LevelUpStage = newStage
	}
	return nil
}

func (r *fakeProgressRepo) ResetStage(userID, examID uint) error {
	key := [2]uint{userID, examID}
	p, ok := r.records[key]
	if !ok {
		p = &model.UserProgress{UserID: userID, ExamID: examID}
		r.records[key] = p
	}
	p.LevelUpStage = 0
	return nil
}

func (r *fakeProgressRepo) Save(p *model.UserProgress) error {
	out := *p
	r.records[[2]uint{p.UserID, p.ExamID}] = &out
	return nil
}
