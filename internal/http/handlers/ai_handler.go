// AI assistant HTTP handlers: job-ad parsing, cover letters, dashboard chat,
// and profile/offer match scoring. All four degrade cleanly when no provider
// is configured: the endpoints that need a model answer 503.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/applicationtrack/applicationtrack-backend/internal/ai"
	"github.com/applicationtrack/applicationtrack-backend/internal/repo"
	"github.com/applicationtrack/applicationtrack-backend/internal/services"
)

// ParseAnnouncementRequest carries the raw job-ad text to analyze.
type ParseAnnouncementRequest struct {
	Text string `json:"text" binding:"required"`
}

// ProfilePayload mirrors ai.Profile on the wire.
type ProfilePayload struct {
	Name       string `json:"name" example:"Jane Doe"`
	Title      string `json:"title" example:"Backend engineer"`
	Skills     string `json:"skills" example:"Go, PostgreSQL, Kubernetes"`
	Experience string `json:"experience" example:"5 years building payment APIs"`
}

// CoverLetterRequest is the payload for generating a cover letter.
type CoverLetterRequest struct {
	Profile ProfilePayload `json:"profile"`
}

// CoverLetterResponse wraps the generated letter.
type CoverLetterResponse struct {
	Letter string `json:"letter"`
}

// AssistantChatRequest is the payload for the dashboard chat.
type AssistantChatRequest struct {
	Message string `json:"message" binding:"required" example:"Which applications should I follow up on?"`
}

// AssistantChatResponse wraps the assistant's reply.
type AssistantChatResponse struct {
	Reply string `json:"reply"`
}

// aiError maps assistant failures onto the error envelope.
func aiError(c *gin.Context, err error) {
	if errors.Is(err, ai.ErrUnavailable) {
		fail(c, http.StatusServiceUnavailable, ErrCodeAIUnavailable, "no AI provider configured")
		return
	}
	fail(c, http.StatusBadGateway, ErrCodeAIUnavailable, err.Error())
}

// ParseAnnouncement godoc
// @ID          parseAnnouncement
// @Summary     Extract application fields from a raw job ad
// @Description Sends the pasted job ad to the assistant and returns the structured fields it found. Nothing is persisted; the client feeds the result into the create form.
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ParseAnnouncementRequest  true  "Raw job ad text"
//
// @Success     200  {object} ai.ParsedAnnouncement
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     502  {object} handlers.ErrorResponse "Provider error"
// @Failure     503  {object} handlers.ErrorResponse "No provider configured"
// @Router      /ai/parse [post]
func (h *Handlers) ParseAnnouncement(c *gin.Context) {
	var req ParseAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text is required")
		return
	}

	parsed, err := h.assistant.ParseAnnouncement(c.Request.Context(), req.Text)
	if err != nil {
		aiError(c, err)
		return
	}
	ok(c, http.StatusOK, parsed)
}

// GenerateCoverLetter godoc
// @ID          generateCoverLetter
// @Summary     Generate a cover letter for an application
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Application ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CoverLetterRequest  true  "Candidate profile"
//
// @Success     200  {object} handlers.CoverLetterResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Application not found"
// @Failure     502  {object} handlers.ErrorResponse "Provider error"
// @Router      /applications/{id}/cover-letter [post]
func (h *Handlers) GenerateCoverLetter(c *gin.Context) {
	appID := c.Param("id")
	if _, err := uuid.Parse(appID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	var req CoverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	app, err := h.appSvc.Get(c.Request.Context(), userID(c), appID)
	if err != nil {
		serviceError(c, err)
		return
	}

	letter, err := h.assistant.GenerateCoverLetter(c.Request.Context(), ai.Profile{
		Name:       req.Profile.Name,
		Title:      req.Profile.Title,
		Skills:     req.Profile.Skills,
		Experience: req.Profile.Experience,
	}, *app)
	if err != nil {
		aiError(c, err)
		return
	}
	ok(c, http.StatusOK, CoverLetterResponse{Letter: letter})
}

// AssistantChat godoc
// @ID          assistantChat
// @Summary     Ask the assistant about your applications
// @Description The assistant answers with the user's current records as context. It is stateless: no conversation history is kept.
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.AssistantChatRequest  true  "Question"
//
// @Success     200  {object} handlers.AssistantChatResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     502  {object} handlers.ErrorResponse "Provider error"
// @Router      /ai/chat [post]
func (h *Handlers) AssistantChat(c *gin.Context) {
	var req AssistantChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is required")
		return
	}

	apps, err := h.appSvc.List(c.Request.Context(), userID(c), repo.Filter{}, services.Sort{})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	reply, err := h.assistant.Chat(c.Request.Context(), req.Message, apps)
	if err != nil {
		aiError(c, err)
		return
	}
	ok(c, http.StatusOK, AssistantChatResponse{Reply: reply})
}

// MatchScore godoc
// @ID          matchScore
// @Summary     Score how well a profile fits an application
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Application ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CoverLetterRequest  true  "Candidate profile"
//
// @Success     200  {object} ai.MatchReport
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Application not found"
// @Failure     503  {object} handlers.ErrorResponse "No provider configured"
// @Router      /applications/{id}/match [post]
func (h *Handlers) MatchScore(c *gin.Context) {
	appID := c.Param("id")
	if _, err := uuid.Parse(appID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	var req CoverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	app, err := h.appSvc.Get(c.Request.Context(), userID(c), appID)
	if err != nil {
		serviceError(c, err)
		return
	}

	report, err := h.assistant.MatchScore(c.Request.Context(), *app, ai.Profile{
		Name:       req.Profile.Name,
		Title:      req.Profile.Title,
		Skills:     req.Profile.Skills,
		Experience: req.Profile.Experience,
	})
	if err != nil {
		aiError(c, err)
		return
	}
	ok(c, http.StatusOK, report)
}
