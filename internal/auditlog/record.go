package auditlog

import "time"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// AuditEntry records one mutating command invocation.
type AuditEntry struct {
	ID int64 `json:"id"`

	// OperationID is a random identifier shared with the command's log
	// lines.
	OperationID string    `json:"operation_id"`
	Timestamp   time.Time `json:"timestamp"`
	Command     string    `json:"command"`
	Args        string    `json:"args,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	Port        int       `json:"port,omitempty"`
	Service     string    `json:"service,omitempty"`
	Outcome     string    `json:"outcome"`
	Detail      string    `json:"detail,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
}
