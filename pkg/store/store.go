// Package store defines the persistence interface for the forum.
//
// Two implementations exist: a SurrealDB-backed store for production
// (pkg/store/surreal) and a mutex-guarded in-memory store used by tests and
// local development (pkg/store/memory). Both follow the same conventions:
//
//   - Get methods return (nil, nil) for missing records; errors are reserved
//     for store failures.
//   - Ownership-scoped mutations (UpdateOwnedQuestion, DeleteOwnedQuestion)
//     treat "does not exist" and "exists but owned by someone else"
//     identically, so callers cannot distinguish the two.
//   - Comment appends and vote inserts are atomic with respect to concurrent
//     writers on the same record: two simultaneous votes from different
//     users must both land, and two simultaneous votes from the same user
//     must yield exactly one membership plus one ErrAlreadyVoted.
package store

import (
	"context"
	"errors"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
)

var (
	// ErrDuplicateEmail is returned by CreateUser when the email address is
	// already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrAlreadyVoted is returned by VoteQuestion/VoteAnswer when the voter
	// is already present in the targeted vote list.
	ErrAlreadyVoted = errors.New("already voted")
)

// Store is the persistence interface for users, questions and answers.
type Store interface {
	// CreateUser persists a new user. Fails with ErrDuplicateEmail when a
	// user with the same email already exists.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser returns the user with the given ID, or nil when absent.
	GetUser(ctx context.Context, id models.UserID) (*models.User, error)

	// GetUserByEmail returns the user with the given email, or nil when
	// absent. Used by login; the caller is responsible for not leaking
	// whether the email exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateQuestion persists a new question with empty comments and vote
	// lists. The ID is generated when unset.
	CreateQuestion(ctx context.Context, question *models.Question) error

	// GetQuestion returns the question with the given ID, or nil when absent.
	GetQuestion(ctx context.Context, id models.QuestionID) (*models.Question, error)

	// ListQuestions returns all questions. Publicly readable; no filtering.
	ListQuestions(ctx context.Context) ([]*models.Question, error)

	// UpdateOwnedQuestion replaces title and content of the question with
	// the given ID, but only when it is owned by owner. Returns the updated
	// question, or nil when no question with that ID belongs to owner.
	UpdateOwnedQuestion(ctx context.Context, id models.QuestionID, owner models.UserID, title, content string) (*models.Question, error)

	// DeleteOwnedQuestion removes the question with the given ID when it is
	// owned by owner. Returns false when no such question belongs to owner.
	DeleteOwnedQuestion(ctx context.Context, id models.QuestionID, owner models.UserID) (bool, error)

	// CreateAnswer persists a new answer. Answers have no HTTP creation
	// endpoint; they enter through seeding and internal tooling.
	CreateAnswer(ctx context.Context, answer *models.Answer) error

	// GetAnswer returns the answer with the given ID, or nil when absent.
	GetAnswer(ctx context.Context, id models.AnswerID) (*models.Answer, error)

	// ListAnswersByQuestion returns all answers attached to a question.
	ListAnswersByQuestion(ctx context.Context, questionID models.QuestionID) ([]*models.Answer, error)

	// AddQuestionComment atomically appends a comment to a question and
	// returns the updated question, or nil when the question is absent.
	// Ownership is not checked; any authenticated user may comment.
	AddQuestionComment(ctx context.Context, id models.QuestionID, comment models.Comment) (*models.Question, error)

	// AddAnswerComment is AddQuestionComment for answers.
	AddAnswerComment(ctx context.Context, id models.AnswerID, comment models.Comment) (*models.Answer, error)

	// VoteQuestion atomically adds voter to the question's upvote or
	// downvote list. Returns the updated question, nil when the question is
	// absent, or ErrAlreadyVoted when the voter is already in that list.
	// The two lists are independent of each other.
	VoteQuestion(ctx context.Context, id models.QuestionID, voter models.UserID, kind models.VoteKind) (*models.Question, error)

	// VoteAnswer is VoteQuestion for answers.
	VoteAnswer(ctx context.Context, id models.AnswerID, voter models.UserID, kind models.VoteKind) (*models.Answer, error)

	// Migrate prepares the backing store: index and constraint definitions
	// for SurrealDB, a no-op for the in-memory store. Idempotent.
	Migrate(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
