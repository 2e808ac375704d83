package provider

import "fmt"

// Reason classifies why a backend attempt failed.
type Reason string

const (
	ReasonAuthorization Reason = "authorization"
	ReasonRateLimited   Reason = "rate_limited"
	ReasonNotFound      Reason = "not_found"
	ReasonMalformed     Reason = "malformed_response"
	ReasonUnreachable   Reason = "network_unreachable"
	ReasonOther         Reason = "other"
)

// Outcome is the result of a single backend attempt. Exactly one of Text
// (with OK set) or Reason is meaningful.
type Outcome struct {
	OK     bool
	Text   string
	Reason Reason
	Status int    // upstream HTTP status, 0 for transport failures
	Detail string // diagnostic message, never shown to end users
}

// Success builds a successful outcome carrying the answer text.
func Success(text string) Outcome {
	return Outcome{OK: true, Text: text}
}

// Failure builds a failed outcome with the given classification.
func Failure(reason Reason, status int, detail string) Outcome {
	return Outcome{Reason: reason, Status: status, Detail: detail}
}

// String renders the outcome for logs.
func (o Outcome) String() string {
	if o.OK {
		return "success"
	}
	if o.Status > 0 {
		return fmt.Sprintf("%s (status %d)", o.Reason, o.Status)
	}
	return string(o.Reason)
}
