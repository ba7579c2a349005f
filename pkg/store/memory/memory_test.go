package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store"
)

func newUser(t *testing.T, s *Store, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func newQuestion(t *testing.T, s *Store, owner models.UserID, title string) *models.Question {
	t.Helper()
	q := &models.Question{Title: title, Content: "content", OwnerID: owner}
	require.NoError(t, s.CreateQuestion(context.Background(), q))
	return q
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	newUser(t, s, "alice", "alice@example.com")

	err := s.CreateUser(ctx, &models.User{Username: "other", Email: "alice@example.com", PasswordHash: "y"})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)

	// Email comparison ignores case and surrounding whitespace.
	err = s.CreateUser(ctx, &models.User{Username: "other", Email: "  ALICE@example.com ", PasswordHash: "y"})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestGetUserByEmailMissing(t *testing.T) {
	s := New()

	user, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestQuestionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")

	q := newQuestion(t, s, owner.ID, "first")
	require.False(t, q.ID.IsZero())
	require.NotNil(t, q.Comments)
	require.Empty(t, q.Upvotes)

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, q.Title, got.Title)
	require.Equal(t, owner.ID, got.OwnerID)

	updated, err := s.UpdateOwnedQuestion(ctx, q.ID, owner.ID, "renamed", "new content")
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "renamed", updated.Title)

	deleted, err := s.DeleteOwnedQuestion(ctx, q.ID, owner.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	got, err = s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestOwnershipMasked(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")
	stranger := newUser(t, s, "bob", "bob@example.com")

	q := newQuestion(t, s, owner.ID, "mine")

	// A non-owner's update or delete behaves exactly like a missing record.
	updated, err := s.UpdateOwnedQuestion(ctx, q.ID, stranger.ID, "stolen", "content")
	require.NoError(t, err)
	require.Nil(t, updated)

	deleted, err := s.DeleteOwnedQuestion(ctx, q.ID, stranger.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, "mine", got.Title)
}

func TestListQuestionsOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")

	first := newQuestion(t, s, owner.ID, "first")
	second := newQuestion(t, s, owner.ID, "second")
	third := newQuestion(t, s, owner.ID, "third")

	_, err := s.DeleteOwnedQuestion(ctx, second.ID, owner.ID)
	require.NoError(t, err)

	list, err := s.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, third.ID, list[1].ID)
}

func TestCommentsPreserveOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")
	q := newQuestion(t, s, owner.ID, "q")

	for _, content := range []string{"one", "two", "three"} {
		updated, err := s.AddQuestionComment(ctx, q.ID, models.Comment{Content: content, AuthorID: owner.ID})
		require.NoError(t, err)
		require.NotNil(t, updated)
	}

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	require.Equal(t, "one", got.Comments[0].Content)
	require.Equal(t, "three", got.Comments[2].Content)
}

func TestCommentOnMissingQuestion(t *testing.T) {
	s := New()

	updated, err := s.AddQuestionComment(context.Background(), models.NewQuestionID(), models.Comment{Content: "hi"})
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestVoteDeduplication(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")
	voter := newUser(t, s, "bob", "bob@example.com")
	q := newQuestion(t, s, owner.ID, "q")

	voted, err := s.VoteQuestion(ctx, q.ID, voter.ID, models.VoteUp)
	require.NoError(t, err)
	require.Equal(t, []models.UserID{voter.ID}, voted.Upvotes)

	_, err = s.VoteQuestion(ctx, q.ID, voter.ID, models.VoteUp)
	require.ErrorIs(t, err, store.ErrAlreadyVoted)

	// The up and down lists are independent: a downvote by the same user
	// still succeeds.
	voted, err = s.VoteQuestion(ctx, q.ID, voter.ID, models.VoteDown)
	require.NoError(t, err)
	require.Equal(t, []models.UserID{voter.ID}, voted.Upvotes)
	require.Equal(t, []models.UserID{voter.ID}, voted.Downvotes)
}

func TestVoteMissingQuestion(t *testing.T) {
	s := New()
	voter := newUser(t, s, "bob", "bob@example.com")

	voted, err := s.VoteQuestion(context.Background(), models.NewQuestionID(), voter.ID, models.VoteUp)
	require.NoError(t, err)
	require.Nil(t, voted)
}

func TestAnswers(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")
	q := newQuestion(t, s, owner.ID, "q")

	answer := &models.Answer{QuestionID: q.ID, Content: "try this", OwnerID: owner.ID}
	require.NoError(t, s.CreateAnswer(ctx, answer))
	require.False(t, answer.ID.IsZero())

	other := &models.Answer{QuestionID: models.NewQuestionID(), Content: "unrelated", OwnerID: owner.ID}
	require.NoError(t, s.CreateAnswer(ctx, other))

	answers, err := s.ListAnswersByQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	require.Equal(t, answer.ID, answers[0].ID)

	updated, err := s.AddAnswerComment(ctx, answer.ID, models.Comment{Content: "thanks", AuthorID: owner.ID})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)

	voted, err := s.VoteAnswer(ctx, answer.ID, owner.ID, models.VoteDown)
	require.NoError(t, err)
	require.Equal(t, []models.UserID{owner.ID}, voted.Downvotes)

	_, err = s.VoteAnswer(ctx, answer.ID, owner.ID, models.VoteDown)
	require.ErrorIs(t, err, store.ErrAlreadyVoted)
}

// TestConcurrentVotes hammers one question from many voters at once, each
// voting twice. Every voter must end up in the list exactly once, with the
// duplicate attempt reported as ErrAlreadyVoted. Run with -race.
func TestConcurrentVotes(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")
	q := newQuestion(t, s, owner.ID, "contended")

	const voters = 16
	var (
		wg           sync.WaitGroup
		landed       atomic.Int64
		rejected     atomic.Int64
		unexpectedMu sync.Mutex
		unexpected   []error
	)

	for i := 0; i < voters; i++ {
		voter := newUser(t, s, fmt.Sprintf("voter%d", i), fmt.Sprintf("voter%d@example.com", i))
		wg.Add(2)
		for j := 0; j < 2; j++ {
			go func(id models.UserID) {
				defer wg.Done()
				_, err := s.VoteQuestion(ctx, q.ID, id, models.VoteUp)
				switch {
				case err == nil:
					landed.Add(1)
				case errors.Is(err, store.ErrAlreadyVoted):
					rejected.Add(1)
				default:
					unexpectedMu.Lock()
					unexpected = append(unexpected, err)
					unexpectedMu.Unlock()
				}
			}(voter.ID)
		}
	}
	wg.Wait()

	require.Empty(t, unexpected)
	require.EqualValues(t, voters, landed.Load())
	require.EqualValues(t, voters, rejected.Load())

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Upvotes, voters)
}

// TestConcurrentComments appends from many goroutines at once; every comment
// must land.
func TestConcurrentComments(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")
	q := newQuestion(t, s, owner.ID, "busy thread")

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			updated, err := s.AddQuestionComment(ctx, q.ID, models.Comment{
				Content:  fmt.Sprintf("comment %d", n),
				AuthorID: owner.ID,
			})
			if err == nil && updated == nil {
				err = errors.New("comment append reported a missing question")
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, writers)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := newUser(t, s, "alice", "alice@example.com")
	q := newQuestion(t, s, owner.ID, "q")

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	got.Title = "mutated"
	got.Comments = append(got.Comments, models.Comment{Content: "sneaky"})

	again, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, "q", again.Title)
	require.Empty(t, again.Comments)
}
