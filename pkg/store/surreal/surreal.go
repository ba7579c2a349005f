// Package surreal implements the store interface on SurrealDB using
// parameterized SurrealQL and the surrealcbor codec.
//
// The implementation leans on two SurrealDB properties the forum depends on:
//
//   - Record IDs address single documents directly, so ownership-scoped
//     mutations become one UPDATE/DELETE statement with a WHERE clause on
//     owner_id, returning zero rows for "absent" and "not owned" alike.
//   - A single UPDATE statement executes atomically, so comment appends
//     (`SET comments += $comment`) and vote inserts
//     (`SET upvotes += $voter WHERE $voter NOTINSIDE upvotes`) cannot lose
//     concurrent updates the way a load-modify-save cycle would.
//
// All queries use $parameters; user-provided values never reach the query
// text through string formatting.
package surreal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store"
)

// Store implements store.Store on a SurrealDB connection.
type Store struct {
	db       *surrealdb.DB
	ns       string
	database string
}

var _ store.Store = (*Store)(nil)

// New connects to SurrealDB over WebSocket. The surrealcbor codec is wired
// in explicitly: without it time.Time and RecordID values do not survive the
// round trip to SurrealDB's internal CBOR format.
func New(wsURL, namespace, database, username, password string) (*Store, error) {
	ctx := context.Background()

	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{db: db, ns: namespace, database: database}, nil
}

// Migrate defines the unique index backing the duplicate-email check.
// SurrealDB creates tables implicitly on first insert; the index is the only
// schema element the forum needs.
func (s *Store) Migrate(ctx context.Context) error {
	query := "DEFINE INDEX IF NOT EXISTS users_email ON TABLE users FIELDS email UNIQUE"
	if _, err := surrealdb.Query[any](ctx, s.db, query, nil); err != nil {
		return fmt.Errorf("failed to define email index: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// handleNotFound collapses the driver's "no record" errors into nil so Get
// methods can return (nil, nil) for missing records.
func handleNotFound(err error) error {
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
			strings.Contains(errStr, "cannot unmarshal array into Go value") {
			return nil
		}
	}
	return err
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = models.NewUserID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := surrealdb.Create[models.User](ctx, s.db, user.ID.RecordID(), user)
	if err != nil {
		// The users_email unique index rejects concurrent registrations
		// that slip past the handler-level duplicate check.
		if strings.Contains(err.Error(), "users_email") {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT * FROM users WHERE email = $email"
	params := map[string]any{
		"email": strings.ToLower(strings.TrimSpace(email)),
	}
	result, err := surrealdb.Query[[]models.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		return &(*result)[0].Result[0], nil
	}
	return nil, nil
}

func (s *Store) CreateQuestion(ctx context.Context, question *models.Question) error {
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

	_, err := surrealdb.Create[models.Question](ctx, s.db, question.ID.RecordID(), question)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id models.QuestionID) (*models.Question, error) {
	question, err := surrealdb.Select[models.Question](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]*models.Question, error) {
	query := "SELECT * FROM questions ORDER BY created_at"
	result, err := surrealdb.Query[[]models.Question](ctx, s.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	questions := []*models.Question{}
	if result != nil && len(*result) > 0 {
		for i := range (*result)[0].Result {
			questions = append(questions, &(*result)[0].Result[i])
		}
	}
	return questions, nil
}

func (s *Store) UpdateOwnedQuestion(ctx context.Context, id models.QuestionID, owner models.UserID, title, content string) (*models.Question, error) {
	// One statement: the WHERE clause scopes the update to the owner, so a
	// missing record and somebody else's record both come back as zero rows.
	query := `UPDATE $question SET title = $title, content = $content, updated_at = $now
		WHERE owner_id = $owner RETURN AFTER`
	params := map[string]any{
		"question": id.RecordID(),
		"owner":    owner.RecordID(),
		"title":    title,
		"content":  content,
		"now":      time.Now(),
	}
	result, err := surrealdb.Query[[]models.Question](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		return &(*result)[0].Result[0], nil
	}
	return nil, nil
}

func (s *Store) DeleteOwnedQuestion(ctx context.Context, id models.QuestionID, owner models.UserID) (bool, error) {
	query := "DELETE $question WHERE owner_id = $owner RETURN BEFORE"
	params := map[string]any{
		"question": id.RecordID(),
		"owner":    owner.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Question](ctx, s.db, query, params)
	if err != nil {
		return false, fmt.Errorf("failed to delete question: %w", err)
	}

	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		return true, nil
	}
	return false, nil
}

func (s *Store) CreateAnswer(ctx context.Context, answer *models.Answer) error {
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

	_, err := surrealdb.Create[models.Answer](ctx, s.db, answer.ID.RecordID(), answer)
	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (s *Store) GetAnswer(ctx context.Context, id models.AnswerID) (*models.Answer, error) {
	answer, err := surrealdb.Select[models.Answer](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return answer, nil
}

func (s *Store) ListAnswersByQuestion(ctx context.Context, questionID models.QuestionID) ([]*models.Answer, error) {
	query := "SELECT * FROM answers WHERE question_id = $question ORDER BY created_at"
	params := map[string]any{
		"question": questionID.RecordID(),
	}
	result, err := surrealdb.Query[[]models.Answer](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	answers := []*models.Answer{}
	if result != nil && len(*result) > 0 {
		for i := range (*result)[0].Result {
			answers = append(answers, &(*result)[0].Result[i])
		}
	}
	return answers, nil
}

func (s *Store) AddQuestionComment(ctx context.Context, id models.QuestionID, comment models.Comment) (*models.Question, error) {
	// `comments += $comment` appends within a single statement, so two
	// concurrent comments both land regardless of interleaving.
	query := "UPDATE $question SET comments += $comment, updated_at = $now RETURN AFTER"
	params := map[string]any{
		"question": id.RecordID(),
		"comment":  comment,
		"now":      time.Now(),
	}
	result, err := surrealdb.Query[[]models.Question](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to add question comment: %w", err)
	}

	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		return &(*result)[0].Result[0], nil
	}
	return nil, nil
}

func (s *Store) AddAnswerComment(ctx context.Context, id models.AnswerID, comment models.Comment) (*models.Answer, error) {
	query := "UPDATE $answer SET comments += $comment, updated_at = $now RETURN AFTER"
	params := map[string]any{
		"answer":  id.RecordID(),
		"comment": comment,
		"now":     time.Now(),
	}
	result, err := surrealdb.Query[[]models.Answer](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to add answer comment: %w", err)
	}

	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		return &(*result)[0].Result[0], nil
	}
	return nil, nil
}

// voteField maps a VoteKind to the document field it mutates. The field name
// is interpolated into query text, so it must come from this closed mapping
// and never from request input.
func voteField(kind models.VoteKind) string {
	if kind == models.VoteDown {
		return "downvotes"
	}
	return "upvotes"
}

func (s *Store) VoteQuestion(ctx context.Context, id models.QuestionID, voter models.UserID, kind models.VoteKind) (*models.Question, error) {
	field := voteField(kind)

	// The UPDATE is the sole arbiter of vote uniqueness: of two concurrent
	// votes by the same user, exactly one matches the NOTINSIDE clause.
	query := fmt.Sprintf(
		"UPDATE $question SET %s += $voter, updated_at = $now WHERE $voter NOTINSIDE %s RETURN AFTER",
		field, field)
	params := map[string]any{
		"question": id.RecordID(),
		"voter":    voter.RecordID(),
		"now":      time.Now(),
	}
	result, err := surrealdb.Query[[]models.Question](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to vote on question: %w", err)
	}

	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		return &(*result)[0].Result[0], nil
	}

	// Zero rows: either the question is absent or the voter already voted.
	existing, err := s.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return nil, store.ErrAlreadyVoted
}

func (s *Store) VoteAnswer(ctx context.Context, id models.AnswerID, voter models.UserID, kind models.VoteKind) (*models.Answer, error) {
	field := voteField(kind)

	query := fmt.Sprintf(
		"UPDATE $answer SET %s += $voter, updated_at = $now WHERE $voter NOTINSIDE %s RETURN AFTER",
		field, field)
	params := map[string]any{
		"answer": id.RecordID(),
		"voter":  voter.RecordID(),
		"now":    time.Now(),
	}
	result, err := surrealdb.Query[[]models.Answer](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to vote on answer: %w", err)
	}

	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		return &(*result)[0].Result[0], nil
	}

	existing, err := s.GetAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return nil, store.ErrAlreadyVoted
}
