package overflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
)

// Router builds the HTTP routing table.
//
// Public:
//
//	POST /api/register                      - Register a new account
//	POST /api/login                         - Exchange credentials for a token
//	GET  /api/questions                     - List all questions
//	GET  /api/questions/{id}                - Get a single question
//	GET  /api/questions/{id}/answers        - List a question's answers
//	GET  /api/answers/{id}                  - Get a single answer
//	GET  /health, GET /api/health           - Service health status
//
// Token required:
//
//	POST   /api/questions                   - Create a question
//	PUT    /api/questions/{id}              - Update an owned question
//	DELETE /api/questions/{id}              - Delete an owned question
//	POST   /api/questions/{id}/comments     - Comment on a question
//	POST   /api/questions/{id}/upvote       - Upvote a question
//	POST   /api/questions/{id}/downvote     - Downvote a question
//	POST   /api/answers/{id}/comments       - Comment on an answer
//	POST   /api/answers/{id}/upvote         - Upvote an answer
//	POST   /api/answers/{id}/downvote       - Downvote an answer
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(a.logRequests)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	api.HandleFunc("/register", a.handleRegister).Methods("POST")
	api.HandleFunc("/login", a.handleLogin).Methods("POST")

	api.HandleFunc("/questions", a.handleListQuestions).Methods("GET")
	api.HandleFunc("/questions", a.requireAuth(a.handleCreateQuestion)).Methods("POST")
	api.HandleFunc("/questions/{id}", a.handleGetQuestion).Methods("GET")
	api.HandleFunc("/questions/{id}", a.requireAuth(a.handleUpdateQuestion)).Methods("PUT")
	api.HandleFunc("/questions/{id}", a.requireAuth(a.handleDeleteQuestion)).Methods("DELETE")
	api.HandleFunc("/questions/{id}/answers", a.handleListQuestionAnswers).Methods("GET")
	api.HandleFunc("/questions/{id}/comments", a.requireAuth(a.handleQuestionComment)).Methods("POST")
	api.HandleFunc("/questions/{id}/upvote", a.requireAuth(a.questionVoteHandler(models.VoteUp))).Methods("POST")
	api.HandleFunc("/questions/{id}/downvote", a.requireAuth(a.questionVoteHandler(models.VoteDown))).Methods("POST")

	api.HandleFunc("/answers/{id}", a.handleGetAnswer).Methods("GET")
	api.HandleFunc("/answers/{id}/comments", a.requireAuth(a.handleAnswerComment)).Methods("POST")
	api.HandleFunc("/answers/{id}/upvote", a.requireAuth(a.answerVoteHandler(models.VoteUp))).Methods("POST")
	api.HandleFunc("/answers/{id}/downvote", a.requireAuth(a.answerVoteHandler(models.VoteDown))).Methods("POST")

	// Health check route outside the /api prefix, for load balancers that
	// cannot be configured with a path prefix.
	router.HandleFunc("/health", a.handleHealth).Methods("GET")

	return router
}

// logRequests emits one structured log line per request.
func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the listener fails. On cancellation it allows up to 5 seconds for active
// requests to complete.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	a.log.Info().Str("addr", addr).Msg("starting server")

	server := &http.Server{
		Addr:    addr,
		Handler: a.Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
