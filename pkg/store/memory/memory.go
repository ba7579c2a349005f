// Package memory provides an in-memory implementation of the store
// interface. It backs the test suite and the -mem development mode, playing
// the role SurrealDB plays in production while serializing every mutation on
// a single mutex, which trivially satisfies the store's atomicity contract
// for comment appends and vote inserts.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store"
)

// Store keeps all records in maps guarded by one RWMutex. Returned entities
// are deep copies so callers can never mutate shared state behind the lock.
type Store struct {
	mu        sync.RWMutex
	users     map[models.UserID]*models.User
	emails    map[string]models.UserID
	questions map[models.QuestionID]*models.Question
	answers   map[models.AnswerID]*models.Answer

	// questionOrder preserves insertion order for ListQuestions, matching
	// the stable ordering the HTTP API documents.
	questionOrder []models.QuestionID
	answerOrder   []models.AnswerID
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:     make(map[models.UserID]*models.User),
		emails:    make(map[string]models.UserID),
		questions: make(map[models.QuestionID]*models.Question),
		answers:   make(map[models.AnswerID]*models.Answer),
	}
}

func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, exists := s.emails[key]; exists {
		return store.ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = models.NewUserID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	u := *user
	s.users[u.ID] = &u
	s.emails[key] = u.ID
	return nil
}

func (s *Store) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) CreateQuestion(ctx context.Context, question *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if question.ID.IsZero() {
		question.ID = models.NewQuestionID()
	}
	now := time.Now()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	if question.UpdatedAt.IsZero() {
		question.UpdatedAt = now
	}
	if question.Comments == nil {
		question.Comments = []models.Comment{}
	}
	if question.Upvotes == nil {
		question.Upvotes = []models.UserID{}
	}
	if question.Downvotes == nil {
		question.Downvotes = []models.UserID{}
	}

	cp := cloneQuestion(question)
	s.questions[cp.ID] = cp
	s.questionOrder = append(s.questionOrder, cp.ID)
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id models.QuestionID) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	return cloneQuestion(q), nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Question, 0, len(s.questionOrder))
	for _, id := range s.questionOrder {
		if q, ok := s.questions[id]; ok {
			out = append(out, cloneQuestion(q))
		}
	}
	return out, nil
}

func (s *Store) UpdateOwnedQuestion(ctx context.Context, id models.QuestionID, owner models.UserID, title, content string) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok || q.OwnerID != owner {
		return nil, nil
	}
	q.Title = title
	q.Content = content
	q.UpdatedAt = time.Now()
	return cloneQuestion(q), nil
}

func (s *Store) DeleteOwnedQuestion(ctx context.Context, id models.QuestionID, owner models.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok || q.OwnerID != owner {
		return false, nil
	}
	delete(s.questions, id)
	for i, qid := range s.questionOrder {
		if qid == id {
			s.questionOrder = append(s.questionOrder[:i], s.questionOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *Store) CreateAnswer(ctx context.Context, answer *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if answer.ID.IsZero() {
		answer.ID = models.NewAnswerID()
	}
	now := time.Now()
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = now
	}
	if answer.UpdatedAt.IsZero() {
		answer.UpdatedAt = now
	}
	if answer.Comments == nil {
		answer.Comments = []models.Comment{}
	}
	if answer.Upvotes == nil {
		answer.Upvotes = []models.UserID{}
	}
	if answer.Downvotes == nil {
		answer.Downvotes = []models.UserID{}
	}

	cp := cloneAnswer(answer)
	s.answers[cp.ID] = cp
	s.answerOrder = append(s.answerOrder, cp.ID)
	return nil
}

func (s *Store) GetAnswer(ctx context.Context, id models.AnswerID) (*models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.answers[id]
	if !ok {
		return nil, nil
	}
	return cloneAnswer(a), nil
}

func (s *Store) ListAnswersByQuestion(ctx context.Context, questionID models.QuestionID) ([]*models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Answer{}
	for _, id := range s.answerOrder {
		if a, ok := s.answers[id]; ok && a.QuestionID == questionID {
			out = append(out, cloneAnswer(a))
		}
	}
	return out, nil
}

func (s *Store) AddQuestionComment(ctx context.Context, id models.QuestionID, comment models.Comment) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	q.Comments = append(q.Comments, comment)
	q.UpdatedAt = time.Now()
	return cloneQuestion(q), nil
}

func (s *Store) AddAnswerComment(ctx context.Context, id models.AnswerID, comment models.Comment) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.answers[id]
	if !ok {
		return nil, nil
	}
	a.Comments = append(a.Comments, comment)
	a.UpdatedAt = time.Now()
	return cloneAnswer(a), nil
}

func (s *Store) VoteQuestion(ctx context.Context, id models.QuestionID, voter models.UserID, kind models.VoteKind) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	list := &q.Upvotes
	if kind == models.VoteDown {
		list = &q.Downvotes
	}
	if models.HasVoted(*list, voter) {
		return nil, store.ErrAlreadyVoted
	}
	*list = append(*list, voter)
	q.UpdatedAt = time.Now()
	return cloneQuestion(q), nil
}

func (s *Store) VoteAnswer(ctx context.Context, id models.AnswerID, voter models.UserID, kind models.VoteKind) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.answers[id]
	if !ok {
		return nil, nil
	}
	list := &a.Upvotes
	if kind == models.VoteDown {
		list = &a.Downvotes
	}
	if models.HasVoted(*list, voter) {
		return nil, store.ErrAlreadyVoted
	}
	*list = append(*list, voter)
	a.UpdatedAt = time.Now()
	return cloneAnswer(a), nil
}

func cloneQuestion(q *models.Question) *models.Question {
	cp := *q
	cp.Comments = append([]models.Comment{}, q.Comments...)
	cp.Upvotes = append([]models.UserID{}, q.Upvotes...)
	cp.Downvotes = append([]models.UserID{}, q.Downvotes...)
	return &cp
}

func cloneAnswer(a *models.Answer) *models.Answer {
	cp := *a
	cp.Comments = append([]models.Comment{}, a.Comments...)
	cp.Upvotes = append([]models.UserID{}, a.Upvotes...)
	cp.Downvotes = append([]models.UserID{}, a.Downvotes...)
	return &cp
}
