package overflow

import (
	"context"
	"fmt"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
)

// Seed populates the store with demonstration data: two accounts, a couple
// of questions and an answer on each. Registration goes through the auth
// service so the seeded accounts have real password hashes and can log in
// (both passwords are "password123").
func (a *App) Seed(ctx context.Context, cmd *SeedCommand) error {
	_, alice, err := a.auth.Register(ctx, "alice", "alice@example.com", "password123")
	if err != nil {
		return fmt.Errorf("failed to seed user alice: %w", err)
	}
	_, bob, err := a.auth.Register(ctx, "bob", "bob@example.com", "password123")
	if err != nil {
		return fmt.Errorf("failed to seed user bob: %w", err)
	}

	questions := []*models.Question{
		{
			Title:   "How do I parse a duration from an environment variable?",
			Content: "I have a timeout configured as a string like \"90s\" and need it as a duration.",
			OwnerID: alice.ID,
		},
		{
			Title:   "Why does my JSON field render as null instead of an empty array?",
			Content: "The field is a slice that I never assign to before encoding the response.",
			OwnerID: bob.ID,
		},
	}
	answerContent := []string{
		"Use time.ParseDuration on the raw value and fall back to a default when it fails.",
		"Initialize the slice to an empty one when you build the struct; a nil slice encodes as null.",
	}

	for i, q := range questions {
		if err := a.store.CreateQuestion(ctx, q); err != nil {
			return fmt.Errorf("failed to seed question %q: %w", q.Title, err)
		}
		answer := &models.Answer{
			QuestionID: q.ID,
			Content:    answerContent[i],
			OwnerID:    otherUser(q.OwnerID, alice.ID, bob.ID),
		}
		if err := a.store.CreateAnswer(ctx, answer); err != nil {
			return fmt.Errorf("failed to seed answer for %q: %w", q.Title, err)
		}
		a.log.Info().Str("question_id", q.ID.String()).Str("title", q.Title).Msg("seeded question")
	}

	a.log.Info().Msg("seed complete")
	return nil
}

// otherUser returns whichever of the two seeded users did not ask the
// question, so every answer comes from the other account.
func otherUser(owner, first, second models.UserID) models.UserID {
	if owner == first {
		return second
	}
	return first
}
