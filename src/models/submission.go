package models

import "time"

// Submission is a completed transaction record as stored in the database.
// The full record is kept as JSON; a few columns are denormalized so that
// submissions can be listed without decoding every payload.
type Submission struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	AgentName   string    `json:"agentName"`
	AgentRole   AgentRole `json:"agentRole"`
	MLSNumber   string    `json:"mlsNumber"`
	Address     string    `json:"address"`
	ClosingDate string    `json:"closingDate"`
	Payload     string    `json:"-"` // JSON-encoded TransactionRecord
	SubmittedAt time.Time `json:"submittedAt"`
}
