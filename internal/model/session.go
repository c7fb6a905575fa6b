package model

import "time"

// SessionStatus is the import session state machine.
type SessionStatus string

// Session status constants. PARSING -> REVIEWING -> COMPLETE, with FAILED
// reachable from PARSING.
const (
	SessionParsing   SessionStatus = "PARSING"
	SessionReviewing SessionStatus = "REVIEWING"
	SessionComplete  SessionStatus = "COMPLETE"
	SessionFailed    SessionStatus = "FAILED"
)

// ImportSession represents one uploaded statement file end-to-end.
type ImportSession struct {
	ID            string
	UserID        string
	Status        SessionStatus
	SourceFile    string
	BankFormat    string // detected format id, empty until parsing resolves it
	RowCount      int
	AutoCount     int
	ReviewCount   int
	ProgressDone  int
	ProgressTotal int
	Error         string // populated when Status is FAILED
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
