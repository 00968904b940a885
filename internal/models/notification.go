package models

// Severity of a Notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a transient status message shown once on the next rendered page
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Success builds a success notification
func Success(message string) Notification {
	return Notification{Severity: SeveritySuccess, Message: message}
}

// Error builds an error notification
func Error(message string) Notification {
	return Notification{Severity: SeverityError, Message: message}
}

// IsError reports whether n carries an error
func (n Notification) IsError() bool {
	return n.Severity == SeverityError
}
