package models

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Typed identifiers wrap a UUID per entity kind so that a question ID can
// never be passed where a user ID is expected. Each type marshals to a plain
// UUID string in JSON and to a SurrealDB RecordID (CBOR tag 8) on the wire,
// which keeps API payloads clean while letting the store address records
// directly.

// UserID is a typed ID for users.
type UserID struct {
	uuid uuid.UUID
}

func NewUserID() UserID {
	return UserID{uuid: uuid.New()}
}

func NewUserIDFromUUID(id uuid.UUID) UserID {
	return UserID{uuid: id}
}

// ParseUserID parses a UUID string into a UserID. A parse failure is the
// caller's signal that the identifier is malformed, not merely unknown.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return UserID{uuid: id}, nil
}

func (u UserID) UUID() uuid.UUID { return u.uuid }
func (u UserID) String() string  { return u.uuid.String() }
func (u UserID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u UserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "users",
		ID:    u.uuid.String(),
	}
}

func (u UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.uuid.String())
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	u.uuid = id
	return nil
}

func (u UserID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"users", u.uuid.String()},
	})
}

func (u *UserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "users", &u.uuid)
}

// QuestionID is a typed ID for questions.
type QuestionID struct {
	uuid uuid.UUID
}

func NewQuestionID() QuestionID {
	return QuestionID{uuid: uuid.New()}
}

func NewQuestionIDFromUUID(id uuid.UUID) QuestionID {
	return QuestionID{uuid: id}
}

func ParseQuestionID(s string) (QuestionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return QuestionID{}, fmt.Errorf("invalid question ID: %w", err)
	}
	return QuestionID{uuid: id}, nil
}

func (q QuestionID) UUID() uuid.UUID { return q.uuid }
func (q QuestionID) String() string  { return q.uuid.String() }
func (q QuestionID) IsZero() bool    { return q.uuid == uuid.Nil }

func (q QuestionID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "questions",
		ID:    q.uuid.String(),
	}
}

func (q QuestionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.uuid.String())
}

func (q *QuestionID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	q.uuid = id
	return nil
}

func (q QuestionID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"questions", q.uuid.String()},
	})
}

func (q *QuestionID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "questions", &q.uuid)
}

// AnswerID is a typed ID for answers.
type AnswerID struct {
	uuid uuid.UUID
}

func NewAnswerID() AnswerID {
	return AnswerID{uuid: uuid.New()}
}

func NewAnswerIDFromUUID(id uuid.UUID) AnswerID {
	return AnswerID{uuid: id}
}

func ParseAnswerID(s string) (AnswerID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AnswerID{}, fmt.Errorf("invalid answer ID: %w", err)
	}
	return AnswerID{uuid: id}, nil
}

func (a AnswerID) UUID() uuid.UUID { return a.uuid }
func (a AnswerID) String() string  { return a.uuid.String() }
func (a AnswerID) IsZero() bool    { return a.uuid == uuid.Nil }

func (a AnswerID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "answers",
		ID:    a.uuid.String(),
	}
}

func (a AnswerID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.uuid.String())
}

func (a *AnswerID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	a.uuid = id
	return nil
}

func (a AnswerID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"answers", a.uuid.String()},
	})
}

func (a *AnswerID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "answers", &a.uuid)
}

// unmarshalCBORID decodes a SurrealDB RecordID from CBOR. SurrealDB tags
// RecordIDs with CBOR tag 8 and encodes them as a [table, id] pair.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	// Major type 6 is a CBOR tag.
	majorType := data[0] >> 5
	if majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	if tag.Number != 8 {
		return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}
	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsedUUID, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsedUUID
	return nil
}
