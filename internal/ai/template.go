package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/status"
)

// Template is the Assistant used when no LLM provider is configured. Cover
// letters come from a fixed template and chat answers are computed from the
// user's records; parsing and match scoring genuinely need a model and return
// ErrUnavailable.
type Template struct{}

// ParseAnnouncement always fails: extraction needs a model.
func (Template) ParseAnnouncement(ctx context.Context, text string) (*ParsedAnnouncement, error) {
	return nil, ErrUnavailable
}

// GenerateCoverLetter fills a fixed letter template with the application and
// profile fields. The output is serviceable but generic.
func (Template) GenerateCoverLetter(ctx context.Context, profile Profile, app domain.Application) (string, error) {
	name := profile.Name
	if name == "" {
		name = "[Your name]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s hiring team,\n\n", app.Company)
	fmt.Fprintf(&b, "I am writing to apply for the position you advertised")
	if app.Location != "" {
		fmt.Fprintf(&b, " in %s", app.Location)
	}
	b.WriteString(". Your posting caught my attention and I believe my background is a strong match for what you are looking for.\n\n")
	if profile.Skills != "" {
		fmt.Fprintf(&b, "I bring hands-on experience with %s. ", profile.Skills)
	}
	if profile.Experience != "" {
		fmt.Fprintf(&b, "%s ", strings.TrimSpace(profile.Experience))
	}
	b.WriteString("I am confident I could contribute from day one and would welcome the chance to discuss the role in more detail.\n\n")
	fmt.Fprintf(&b, "Thank you for your consideration.\n\nBest regards,\n%s", name)
	return b.String(), nil
}

// Chat answers from the records alone: counts per status and a couple of
// rule-based tips. It ignores the free-form question beyond acknowledging it.
func (Template) Chat(ctx context.Context, message string, apps []domain.Application) (string, error) {
	if len(apps) == 0 {
		return "You have no tracked applications yet. Add your first one and I can help you follow up on it.", nil
	}

	counts := map[status.Status]int{}
	for i := range apps {
		counts[status.Status(apps[i].Status)]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are tracking %d application(s):\n", len(apps))
	for _, st := range status.All {
		if n := counts[st]; n > 0 {
			fmt.Fprintf(&b, "- %d %s\n", n, st)
		}
	}
	if n := counts[status.Pending]; n > 0 {
		fmt.Fprintf(&b, "\n%d application(s) are still pending; consider following up if they have been quiet for more than two weeks.", n)
	}
	if n := counts[status.InterviewDone]; n > 0 {
		fmt.Fprintf(&b, "\n%d interview(s) are awaiting an outcome; a short thank-you note can keep the conversation going.", n)
	}
	return b.String(), nil
}

// MatchScore always fails: scoring needs a model.
func (Template) MatchScore(ctx context.Context, app domain.Application, profile Profile) (*MatchReport, error) {
	return nil, ErrUnavailable
}
