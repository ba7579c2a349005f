// Package models defines the forum's domain entities and their typed
// identifiers. Questions and answers embed their comments and vote lists as
// part of the document itself, mirroring how they are stored: one record per
// question or answer, mutated as a whole.
package models

import (
	"time"
)

// VoteKind selects which vote list a vote lands in. The two lists are
// independent: being present in one does not exclude a user from the other.
type VoteKind string

const (
	VoteUp   VoteKind = "upvote"
	VoteDown VoteKind = "downvote"
)

// User is a registered account. PasswordHash is never serialized to JSON;
// it only travels between the auth service and the store.
type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" cbor:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Comment is embedded in a question or answer. Comments carry no identity of
// their own and are immutable once appended; their order within the parent
// document is the order in which they were added.
type Comment struct {
	Content   string    `json:"content"`
	AuthorID  UserID    `json:"author_id" cbor:"author_id"`
	CreatedAt time.Time `json:"created_at" cbor:"created_at"`
}

// Question is a top-level post. OwnerID is fixed at creation; only the owner
// may update the title/content or delete the question. Upvotes and Downvotes
// each hold a given user at most once.
type Question struct {
	ID        QuestionID `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	OwnerID   UserID     `json:"owner_id" cbor:"owner_id"`
	Comments  []Comment  `json:"comments"`
	Upvotes   []UserID   `json:"upvotes"`
	Downvotes []UserID   `json:"downvotes"`
	CreatedAt time.Time  `json:"created_at" cbor:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" cbor:"updated_at"`
}

// Answer has the same shape as a question minus the title. The QuestionID
// linkage records which question an answer belongs to; answers are created
// through the store API rather than an HTTP endpoint.
type Answer struct {
	ID         AnswerID   `json:"id"`
	QuestionID QuestionID `json:"question_id" cbor:"question_id"`
	Content    string     `json:"content"`
	OwnerID    UserID     `json:"owner_id" cbor:"owner_id"`
	Comments   []Comment  `json:"comments"`
	Upvotes    []UserID   `json:"upvotes"`
	Downvotes  []UserID   `json:"downvotes"`
	CreatedAt  time.Time  `json:"created_at" cbor:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" cbor:"updated_at"`
}

// HasVoted reports whether voter is already in the list.
func HasVoted(list []UserID, voter UserID) bool {
	for _, id := range list {
		if id == voter {
			return true
		}
	}
	return false
}
