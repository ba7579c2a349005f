package overflow

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New(&Config{
		ServerPort:  "0",
		UseMemory:   true,
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// doJSON issues a request against the router and decodes the JSON response
// body into a generic map.
func doJSON(t *testing.T, app *App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		var raw any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw), "body: %s", rec.Body.String())
		decoded, _ = raw.(map[string]any)
	}
	return rec.Code, decoded
}

func registerUser(t *testing.T, app *App, username, email string) string {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/api/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func createQuestion(t *testing.T, app *App, token, title string) string {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/api/questions", token, map[string]string{
		"title":   title,
		"content": "some content",
	})
	require.Equal(t, http.StatusCreated, status)
	id, ok := body["id"].(string)
	require.True(t, ok)
	return id
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "User registered successfully", body["message"])
	require.NotEmpty(t, body["token"])

	status, body = doJSON(t, app, "POST", "/api/register", "", map[string]string{
		"username": "impostor",
		"email":    "alice@example.com",
		"password": "other",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "duplicate_email", body["code"])

	status, body = doJSON(t, app, "POST", "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["token"])

	status, body = doJSON(t, app, "POST", "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "authentication_failed", body["code"])
}

func TestQuestionCRUD(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice", "alice@example.com")

	id := createQuestion(t, app, token, "How does this work?")

	status, body := doJSON(t, app, "GET", "/api/questions/"+id, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "How does this work?", body["title"])
	require.Empty(t, body["comments"])

	status, body = doJSON(t, app, "PUT", "/api/questions/"+id, token, map[string]string{
		"title":   "Renamed",
		"content": "edited content",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Renamed", body["title"])

	status, _ = doJSON(t, app, "GET", "/api/questions", "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, "DELETE", "/api/questions/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Question deleted successfully", body["message"])

	status, body = doJSON(t, app, "GET", "/api/questions/"+id, "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", body["code"])
}

func TestForeignQuestionLooksMissing(t *testing.T) {
	app := newTestApp(t)
	ownerToken := registerUser(t, app, "alice", "alice@example.com")
	strangerToken := registerUser(t, app, "bob", "bob@example.com")

	id := createQuestion(t, app, ownerToken, "mine")

	// Someone else's question reads fine but cannot be modified; the
	// response never admits the question exists.
	status, body := doJSON(t, app, "PUT", "/api/questions/"+id, strangerToken, map[string]string{
		"title": "stolen", "content": "x",
	})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", body["code"])

	status, _ = doJSON(t, app, "DELETE", "/api/questions/"+id, strangerToken, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, app, "GET", "/api/questions/"+id, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "mine", body["title"])
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/questions", "", map[string]string{
		"title": "t", "content": "c",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "missing_token", body["code"])

	req := httptest.NewRequest("POST", "/api/questions", bytes.NewBufferString(`{"title":"t","content":"c"}`))
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Equal(t, "invalid_token", decoded["code"])
}

func TestInvalidIDFormat(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice", "alice@example.com")

	for _, path := range []string{
		"/api/questions/not-a-uuid/upvote",
		"/api/questions/123/comments",
		"/api/answers/xyz/downvote",
	} {
		status, body := doJSON(t, app, "POST", path, token, map[string]string{"content": "x"})
		require.Equal(t, http.StatusBadRequest, status, path)
		require.Equal(t, "invalid_id", body["code"], path)
	}

	status, body := doJSON(t, app, "GET", "/api/questions/not-a-uuid", "", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_id", body["code"])
}

func TestQuestionVoting(t *testing.T) {
	app := newTestApp(t)
	ownerToken := registerUser(t, app, "alice", "alice@example.com")
	voterToken := registerUser(t, app, "bob", "bob@example.com")

	id := createQuestion(t, app, ownerToken, "vote on me")

	status, body := doJSON(t, app, "POST", "/api/questions/"+id+"/upvote", voterToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["upvotes"], 1)

	status, body = doJSON(t, app, "POST", "/api/questions/"+id+"/upvote", voterToken, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "already_voted", body["code"])

	// The downvote list is tracked separately; an existing upvote does not
	// block it.
	status, body = doJSON(t, app, "POST", "/api/questions/"+id+"/downvote", voterToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["upvotes"], 1)
	require.Len(t, body["downvotes"], 1)

	// A second voter gets their own entry.
	status, body = doJSON(t, app, "POST", "/api/questions/"+id+"/upvote", ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["upvotes"], 2)
}

func TestVoteMissingQuestion(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice", "alice@example.com")

	status, body := doJSON(t, app, "POST", "/api/questions/"+models.NewQuestionID().String()+"/upvote", token, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", body["code"])
}

func TestQuestionComments(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice", "alice@example.com")
	otherToken := registerUser(t, app, "bob", "bob@example.com")

	id := createQuestion(t, app, token, "discuss")

	status, body := doJSON(t, app, "POST", "/api/questions/"+id+"/comments", otherToken, map[string]string{
		"content": "first",
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["comments"], 1)

	status, body = doJSON(t, app, "POST", "/api/questions/"+id+"/comments", token, map[string]string{
		"content": "second",
	})
	require.Equal(t, http.StatusOK, status)
	comments, ok := body["comments"].([]any)
	require.True(t, ok)
	require.Len(t, comments, 2)
	first, ok := comments[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "first", first["content"])
}

func TestAnswerEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice", "alice@example.com")
	questionID := createQuestion(t, app, token, "q")

	qid, err := models.ParseQuestionID(questionID)
	require.NoError(t, err)

	userID, err := app.auth.Authenticate(token)
	require.NoError(t, err)

	answer := &models.Answer{QuestionID: qid, Content: "try this", OwnerID: userID}
	require.NoError(t, app.store.CreateAnswer(context.Background(), answer))

	status, body := doJSON(t, app, "GET", "/api/questions/"+questionID+"/answers", "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, "GET", "/api/answers/"+answer.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "try this", body["content"])

	status, body = doJSON(t, app, "POST", "/api/answers/"+answer.ID.String()+"/comments", token, map[string]string{
		"content": "thanks",
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["comments"], 1)

	status, body = doJSON(t, app, "POST", "/api/answers/"+answer.ID.String()+"/upvote", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["upvotes"], 1)

	status, body = doJSON(t, app, "POST", "/api/answers/"+answer.ID.String()+"/upvote", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "already_voted", body["code"])
}

func TestInvalidPayload(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice", "alice@example.com")

	req := httptest.NewRequest("POST", "/api/questions", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_payload", body["code"])
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/health", "/api/health"} {
		status, body := doJSON(t, app, "GET", path, "", nil)
		require.Equal(t, http.StatusOK, status, path)
		require.Equal(t, "healthy", body["status"], path)
		require.NotEmpty(t, body["time"], path)
	}
}
