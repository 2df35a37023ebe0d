// Gemini-backed Assistant implementation on langchaingo.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini implements Assistant against Google's Generative Language API.
type Gemini struct {
	// Model is the underlying LLM client.
	Model llms.Model
	// Locale selects the output language for cover letters.
	Locale language.Tag
}

// NewGemini constructs a Gemini assistant. model may be empty to use
// DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if model == "" {
		model = DefaultModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{Model: llm, Locale: language.French}, nil
}

const parsePrompt = `You are a job-posting extraction assistant. Analyze the raw
job ad below and extract structured data.

Rules:
- Ignore navigation menus, footers, "similar jobs" lists, and ads.
- Output valid JSON only. No markdown code fences, no commentary.
- If a field is not mentioned, use an empty string (or empty array for tags).
- Do not guess or invent values.

Schema:
{"company":"","title":"","location":"","salary":"","contract_type":"","summary":"","tags":[]}

contract_type, when present, is one of: CDI, CDD, Stage, Alternance,
Freelance, Interim, Apprentissage.

Job ad:
%s`

// ParseAnnouncement extracts structured fields from a raw job ad. Very long
// inputs are truncated before being sent to the provider.
func (g *Gemini) ParseAnnouncement(ctx context.Context, text string) (*ParsedAnnouncement, error) {
	const maxInput = 20000
	if len(text) > maxInput {
		text = text[:maxInput]
	}
	raw, err := llms.GenerateFromSinglePrompt(ctx, g.Model, fmt.Sprintf(parsePrompt, text))
	if err != nil {
		return nil, fmt.Errorf("parse announcement: %w", err)
	}
	var out ParsedAnnouncement
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("decode announcement fields: %w", err)
	}
	return &out, nil
}

// GenerateCoverLetter writes a cover letter in the configured locale.
func (g *Gemini) GenerateCoverLetter(ctx context.Context, profile Profile, app domain.Application) (string, error) {
	lang := display.English.Languages().Name(g.Locale)
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert recruiter and professional cover-letter writer. Write the letter in %s.\n\n", lang)
	fmt.Fprintf(&b, "Company: %s\n", app.Company)
	if app.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", app.Location)
	}
	fmt.Fprintf(&b, "Job posting:\n%s\n\n", app.Description)
	if profile.Name != "" {
		fmt.Fprintf(&b, "Candidate: %s", profile.Name)
		if profile.Title != "" {
			fmt.Fprintf(&b, ", %s", profile.Title)
		}
		b.WriteString("\n")
	}
	if profile.Skills != "" {
		fmt.Fprintf(&b, "Skills: %s\n", profile.Skills)
	}
	if profile.Experience != "" {
		fmt.Fprintf(&b, "Experience: %s\n", profile.Experience)
	}
	b.WriteString("\nWrite a concise, convincing cover letter (3-4 paragraphs). " +
		"Plain text only, ready to send, no placeholders left to fill in.")

	letter, err := llms.GenerateFromSinglePrompt(ctx, g.Model, b.String())
	if err != nil {
		return "", fmt.Errorf("generate cover letter: %w", err)
	}
	return strings.TrimSpace(letter), nil
}

// Chat answers a free-form question with the user's tracked applications
// summarized into the prompt. The assistant is stateless: context is rebuilt
// from the current records on every call.
func (g *Gemini) Chat(ctx context.Context, message string, apps []domain.Application) (string, error) {
	var b strings.Builder
	b.WriteString("You are the assistant of a personal job-application tracker. " +
		"Answer the user's question helpfully and concisely, using their tracked " +
		"applications below when relevant.\n\n")
	if len(apps) == 0 {
		b.WriteString("The user has no tracked applications yet.\n")
	} else {
		fmt.Fprintf(&b, "Tracked applications (%d):\n", len(apps))
		for i := range apps {
			a := &apps[i]
			fmt.Fprintf(&b, "- %s (%s), applied %s, status %s\n",
				a.Company, a.Location, a.AppliedAt.Format("2006-01-02"), a.Status)
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", message)

	reply, err := llms.GenerateFromSinglePrompt(ctx, g.Model, b.String())
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

const matchPrompt = `You are a recruiting assistant. Rate how well the candidate
profile fits the job below.

Output valid JSON only, no markdown fences:
{"score":0,"strengths":[],"weaknesses":[],"tips":[]}

score is an integer 0-100. strengths, weaknesses, and tips each hold 2-4 short
strings.

Job at %s:
%s

Candidate profile:
Name: %s
Title: %s
Skills: %s
Experience: %s`

// MatchScore rates the fit between a profile and an application.
func (g *Gemini) MatchScore(ctx context.Context, app domain.Application, profile Profile) (*MatchReport, error) {
	prompt := fmt.Sprintf(matchPrompt,
		app.Company, app.Description,
		profile.Name, profile.Title, profile.Skills, profile.Experience)
	raw, err := llms.GenerateFromSinglePrompt(ctx, g.Model, prompt)
	if err != nil {
		return nil, fmt.Errorf("match score: %w", err)
	}
	var out MatchReport
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("decode match report: %w", err)
	}
	if out.Score < 0 {
		out.Score = 0
	}
	if out.Score > 100 {
		out.Score = 100
	}
	return &out, nil
}

// stripFences removes a surrounding markdown code fence that some models emit
// despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
