package status_test

import (
	"testing"

	"github.com/applicationtrack/applicationtrack-backend/internal/status"
)

func TestParse_ValidValues(t *testing.T) {
	valid := []string{
		"pending",
		"rejected_after_review",
		"interview_done",
		"no_response",
		"accepted",
		"rejected_after_interview",
		"no_response_after_interview",
	}
	for _, s := range valid {
		got, err := status.Parse(s)
		if err != nil {
			t.Errorf("Parse(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("Parse(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParse_InvalidValue(t *testing.T) {
	for _, s := range []string{"", "PENDING", "hired", "en_attente", "pending "} {
		if _, err := status.Parse(s); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", s)
		}
	}
}

func TestInitial(t *testing.T) {
	if status.Initial != status.Pending {
		t.Fatalf("Initial = %s, want pending", status.Initial)
	}
}

// AllowedNext must match the transition table exactly, for all seven statuses.
func TestAllowedNext_FullTable(t *testing.T) {
	want := map[status.Status][]status.Status{
		status.Pending: {
			status.RejectedAfterReview,
			status.InterviewDone,
			status.NoResponse,
		},
		status.InterviewDone: {
			status.Accepted,
			status.RejectedAfterInterview,
			status.NoResponseAfterInterview,
		},
		status.RejectedAfterReview:      {},
		status.NoResponse:               {},
		status.Accepted:                 {},
		status.RejectedAfterInterview:   {},
		status.NoResponseAfterInterview: {},
	}
	if len(want) != len(status.All) {
		t.Fatalf("table covers %d statuses, enumeration has %d", len(want), len(status.All))
	}
	for s, expected := range want {
		got := status.AllowedNext(s)
		if len(got) != len(expected) {
			t.Errorf("AllowedNext(%s) = %v, want %v", s, got, expected)
			continue
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("AllowedNext(%s)[%d] = %s, want %s", s, i, got[i], expected[i])
			}
		}
	}
}

// CanTransition(from, to) must hold exactly when to appears in AllowedNext(from).
func TestCanTransition_MatchesAllowedNext(t *testing.T) {
	for _, from := range status.All {
		allowed := make(map[status.Status]bool)
		for _, s := range status.AllowedNext(from) {
			allowed[s] = true
		}
		for _, to := range status.All {
			if got := status.CanTransition(from, to); got != allowed[to] {
				t.Errorf("CanTransition(%s → %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestCanTransition_SkippingInterviewForbidden(t *testing.T) {
	if status.CanTransition(status.Pending, status.Accepted) {
		t.Error("pending → accepted must be forbidden (interview_done skipped)")
	}
	if status.CanTransition(status.Pending, status.RejectedAfterInterview) {
		t.Error("pending → rejected_after_interview must be forbidden")
	}
}

func TestCanTransition_Self(t *testing.T) {
	for _, s := range status.All {
		if status.CanTransition(s, s) {
			t.Errorf("CanTransition(%s → %s) should be false (self)", s, s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminals := map[status.Status]bool{
		status.Pending:                  false,
		status.InterviewDone:            false,
		status.RejectedAfterReview:      true,
		status.NoResponse:               true,
		status.Accepted:                 true,
		status.RejectedAfterInterview:   true,
		status.NoResponseAfterInterview: true,
	}
	for s, want := range terminals {
		if got := status.IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestClassificationSets(t *testing.T) {
	interview := []status.Status{
		status.InterviewDone, status.Accepted,
		status.RejectedAfterInterview, status.NoResponseAfterInterview,
	}
	for _, s := range interview {
		if !status.ReachedInterview(s) {
			t.Errorf("ReachedInterview(%s) should be true", s)
		}
	}
	for _, s := range []status.Status{status.Pending, status.RejectedAfterReview, status.NoResponse} {
		if status.ReachedInterview(s) {
			t.Errorf("ReachedInterview(%s) should be false", s)
		}
	}

	if !status.IsRejection(status.RejectedAfterReview) || !status.IsRejection(status.RejectedAfterInterview) {
		t.Error("both rejection statuses must be classified as rejections")
	}
	if status.IsRejection(status.NoResponse) {
		t.Error("no_response is not a rejection")
	}

	for _, s := range []status.Status{status.Pending, status.NoResponse, status.NoResponseAfterInterview} {
		if status.Responded(s) {
			t.Errorf("Responded(%s) should be false", s)
		}
	}
	for _, s := range []status.Status{
		status.RejectedAfterReview, status.InterviewDone,
		status.Accepted, status.RejectedAfterInterview,
	} {
		if !status.Responded(s) {
			t.Errorf("Responded(%s) should be true", s)
		}
	}
}
