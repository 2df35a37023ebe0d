// Package status defines the application-status state machine.
//
// Valid status graph:
//
//	pending ──► interview_done ──► accepted
//	   │              │       └──► rejected_after_interview
//	   │              └──────────► no_response_after_interview
//	   ├──────────────────────────► rejected_after_review
//	   └──────────────────────────► no_response
//
// Every status except pending and interview_done is terminal.
package status

import "fmt"

// Status is the stage of a job application. Values mirror the etat column of
// the applications table.
type Status string

const (
	Pending                  Status = "pending"
	RejectedAfterReview      Status = "rejected_after_review"
	InterviewDone            Status = "interview_done"
	NoResponse               Status = "no_response"
	Accepted                 Status = "accepted"
	RejectedAfterInterview   Status = "rejected_after_interview"
	NoResponseAfterInterview Status = "no_response_after_interview"
)

// Initial is the status assigned to every newly created application.
const Initial = Pending

// All lists every known status, in lifecycle order.
var All = []Status{
	Pending,
	RejectedAfterReview,
	InterviewDone,
	NoResponse,
	Accepted,
	RejectedAfterInterview,
	NoResponseAfterInterview,
}

// transitions lists every allowed (from → to) pair. Statuses absent from the
// map are terminal and have no outgoing transitions.
var transitions = map[Status][]Status{
	Pending:       {RejectedAfterReview, InterviewDone, NoResponse},
	InterviewDone: {Accepted, RejectedAfterInterview, NoResponseAfterInterview},
}

// Parse converts a raw string to a Status, returning an error for unknown
// values. Unknown strings must be rejected at the system boundary; the store
// never holds a status outside the enumeration.
func Parse(s string) (Status, error) {
	st := Status(s)
	switch st {
	case Pending, RejectedAfterReview, InterviewDone, NoResponse,
		Accepted, RejectedAfterInterview, NoResponseAfterInterview:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// AllowedNext returns the set of statuses reachable from s in one user action.
// It is total: terminal statuses return an empty slice, never nil panics.
// The returned slice must not be mutated by callers.
func AllowedNext(s Status) []Status {
	return transitions[s]
}

// CanTransition reports whether moving from → to is permitted by the state
// machine. Self-transitions are never permitted.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// ReachedInterview reports whether s can only be reached after an interview
// occurred. Used by the statistics layer to count interviews.
func ReachedInterview(s Status) bool {
	switch s {
	case InterviewDone, Accepted, RejectedAfterInterview, NoResponseAfterInterview:
		return true
	}
	return false
}

// IsRejection reports whether s is one of the two rejection outcomes.
func IsRejection(s Status) bool {
	return s == RejectedAfterReview || s == RejectedAfterInterview
}

// Responded reports whether the employer actually answered: everything except
// pending and the two no-response outcomes.
func Responded(s Status) bool {
	switch s {
	case Pending, NoResponse, NoResponseAfterInterview:
		return false
	}
	return true
}
