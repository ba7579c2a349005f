package overflow

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store"
)

// Machine-readable error codes carried alongside the human-readable message
// in every error body. Clients branch on the code; the message is for
// people.
const (
	codeInvalidID      = "invalid_id"
	codeInvalidPayload = "invalid_payload"
	codeDuplicateEmail = "duplicate_email"
	codeAuthFailed     = "authentication_failed"
	codeMissingToken   = "missing_token"
	codeInvalidToken   = "invalid_token"
	codeNotFound       = "not_found"
	codeAlreadyVoted   = "already_voted"
	codeInternal       = "internal"
)

// respondJSON writes payload as JSON with the given status. A nil payload
// produces an empty body.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

// respondError writes the uniform error body: a human-readable message plus
// a machine-readable code.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{
		"message": message,
		"code":    code,
	})
}

// respondInternal logs the real error and returns a generic 500. The
// underlying failure never reaches the client.
func (a *App) respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	a.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	respondError(w, http.StatusInternalServerError, codeInternal, "An error occurred")
}

type questionPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type commentPayload struct {
	Content string `json:"content"`
}

// handleCreateQuestion creates a question owned by the authenticated user,
// with empty comments and vote lists.
func (a *App) handleCreateQuestion(w http.ResponseWriter, r *http.Request, userID models.UserID) {
	var req questionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidPayload, "Invalid request payload")
		return
	}

	question := &models.Question{
		Title:   req.Title,
		Content: req.Content,
		OwnerID: userID,
	}
	if err := a.store.CreateQuestion(r.Context(), question); err != nil {
		a.respondInternal(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, question)
}

// handleUpdateQuestion replaces title and content. Non-ownership is
// indistinguishable from a nonexistent ID: both produce 404.
func (a *App) handleUpdateQuestion(w http.ResponseWriter, r *http.Request, userID models.UserID) {
	id, err := models.ParseQuestionID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid question ID format")
		return
	}

	var req questionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidPayload, "Invalid request payload")
		return
	}

	question, err := a.store.UpdateOwnedQuestion(r.Context(), id, userID, req.Title, req.Content)
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	if question == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "Question not found")
		return
	}

	respondJSON(w, http.StatusOK, question)
}

func (a *App) handleDeleteQuestion(w http.ResponseWriter, r *http.Request, userID models.UserID) {
	id, err := models.ParseQuestionID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid question ID format")
		return
	}

	deleted, err := a.store.DeleteOwnedQuestion(r.Context(), id, userID)
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, codeNotFound, "Question not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Question deleted successfully"})
}

// handleListQuestions returns every question. No auth, no pagination.
func (a *App) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.store.ListQuestions(r.Context())
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

func (a *App) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseQuestionID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid question ID format")
		return
	}

	question, err := a.store.GetQuestion(r.Context(), id)
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	if question == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "Question not found")
		return
	}

	respondJSON(w, http.StatusOK, question)
}

func (a *App) handleListQuestionAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseQuestionID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid question ID format")
		return
	}

	answers, err := a.store.ListAnswersByQuestion(r.Context(), id)
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, answers)
}

func (a *App) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseAnswerID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid answer ID format")
		return
	}

	answer, err := a.store.GetAnswer(r.Context(), id)
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	if answer == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "Answer not found")
		return
	}

	respondJSON(w, http.StatusOK, answer)
}

// handleQuestionComment appends a comment to a question. Any authenticated
// user may comment on any question; ownership is not checked.
func (a *App) handleQuestionComment(w http.ResponseWriter, r *http.Request, userID models.UserID) {
	id, err := models.ParseQuestionID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid question ID format")
		return
	}

	var req commentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidPayload, "Invalid request payload")
		return
	}

	question, err := a.store.AddQuestionComment(r.Context(), id, models.Comment{
		Content:  req.Content,
		AuthorID: userID,
	})
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	if question == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "Question not found")
		return
	}

	respondJSON(w, http.StatusOK, question)
}

func (a *App) handleAnswerComment(w http.ResponseWriter, r *http.Request, userID models.UserID) {
	id, err := models.ParseAnswerID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid answer ID format")
		return
	}

	var req commentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidPayload, "Invalid request payload")
		return
	}

	answer, err := a.store.AddAnswerComment(r.Context(), id, models.Comment{
		Content:  req.Content,
		AuthorID: userID,
	})
	if err != nil {
		a.respondInternal(w, r, err)
		return
	}
	if answer == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "Answer not found")
		return
	}

	respondJSON(w, http.StatusOK, answer)
}

// questionVoteHandler builds the up/downvote handler for questions. The up
// and down lists are independent: voting one way does not remove or block a
// vote the other way.
func (a *App) questionVoteHandler(kind models.VoteKind) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, userID models.UserID) {
		id, err := models.ParseQuestionID(mux.Vars(r)["id"])
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid question ID format")
			return
		}

		question, err := a.store.VoteQuestion(r.Context(), id, userID, kind)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyVoted) {
				respondError(w, http.StatusBadRequest, codeAlreadyVoted, alreadyVotedMessage(kind, "question"))
				return
			}
			a.respondInternal(w, r, err)
			return
		}
		if question == nil {
			respondError(w, http.StatusNotFound, codeNotFound, "Question not found")
			return
		}

		respondJSON(w, http.StatusOK, question)
	}
}

func (a *App) answerVoteHandler(kind models.VoteKind) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, userID models.UserID) {
		id, err := models.ParseAnswerID(mux.Vars(r)["id"])
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid answer ID format")
			return
		}

		answer, err := a.store.VoteAnswer(r.Context(), id, userID, kind)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyVoted) {
				respondError(w, http.StatusBadRequest, codeAlreadyVoted, alreadyVotedMessage(kind, "answer"))
				return
			}
			a.respondInternal(w, r, err)
			return
		}
		if answer == nil {
			respondError(w, http.StatusNotFound, codeNotFound, "Answer not found")
			return
		}

		respondJSON(w, http.StatusOK, answer)
	}
}

func alreadyVotedMessage(kind models.VoteKind, entity string) string {
	if kind == models.VoteDown {
		return "You have already downvoted this " + entity
	}
	return "You have already upvoted this " + entity
}

// handleHealth reports service liveness for load balancers and monitoring.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}
