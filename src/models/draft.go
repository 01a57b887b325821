package models

// Draft is a persisted snapshot of an in-progress transaction record.
// Timestamp is epoch milliseconds of the save, used for the 24h expiry.
type Draft struct {
	Data        *TransactionRecord `json:"data"`
	CurrentStep int                `json:"currentStep"`
	Timestamp   int64              `json:"timestamp"`
}
