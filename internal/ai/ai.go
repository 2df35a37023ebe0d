// Package ai integrates the third-party LLM features: parsing a job ad into
// structured fields, generating cover letters, the dashboard chat assistant,
// and profile/offer match scoring.
//
// Everything here is a thin pass-through to an external provider — there is
// no algorithmic depth and no retry logic; errors surface immediately to the
// caller. The rest of the backend only ever consumes the Assistant interface,
// and whatever partial fields come back flow through the normal create/update
// paths.
package ai

import (
	"context"
	"errors"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
)

// ErrUnavailable is returned when a feature needs a configured provider and
// none is available.
var ErrUnavailable = errors.New("ai provider not configured")

// ParsedAnnouncement is the partial field set extracted from a raw job ad.
// Empty fields mean the ad did not mention them.
type ParsedAnnouncement struct {
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Salary       string   `json:"salary"`
	ContractType string   `json:"contract_type"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
}

// Profile describes the candidate, as supplied by the caller. All fields are
// free text.
type Profile struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
}

// MatchReport scores how well a profile fits an application.
type MatchReport struct {
	Score      int      `json:"score"` // 0..100
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Tips       []string `json:"tips"`
}

// Assistant is the contract the HTTP layer consumes. Implementations must
// honor the context and must not retry.
type Assistant interface {
	// ParseAnnouncement extracts structured fields from a raw job ad.
	ParseAnnouncement(ctx context.Context, text string) (*ParsedAnnouncement, error)

	// GenerateCoverLetter writes a cover letter for the application.
	GenerateCoverLetter(ctx context.Context, profile Profile, app domain.Application) (string, error)

	// Chat answers a free-form question with the user's current records as context.
	Chat(ctx context.Context, message string, apps []domain.Application) (string, error)

	// MatchScore rates the fit between a profile and an application.
	MatchScore(ctx context.Context, app domain.Application, profile Profile) (*MatchReport, error)
}
