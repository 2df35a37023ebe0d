// Document HTTP handlers. Documents are metadata records hanging off an
// application; the file body lives in external storage.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttachDocumentRequest is the JSON payload for attaching document metadata.
type AttachDocumentRequest struct {
	FileName string `json:"file_name" binding:"required" example:"cv-2026.pdf"`
	Kind     string `json:"kind" example:"cv"`
	URL      string `json:"url" binding:"required" example:"https://storage.example/cv-2026.pdf"`
	Size     int64  `json:"size" example:"83214"`
}

// AttachDocument godoc
// @ID          attachDocument
// @Summary     Attach a document to an application
// @Tags        Documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Application ID (UUID)"  format(uuid)
// @Param       body  body  handlers.AttachDocumentRequest  true  "Document metadata"
//
// @Success     201  {object} domain.Document
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Application not found"
// @Router      /applications/{id}/documents [post]
func (h *Handlers) AttachDocument(c *gin.Context) {
	appID := c.Param("id")
	if _, err := uuid.Parse(appID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	var req AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file_name and url are required")
		return
	}

	doc, err := h.docSvc.Attach(c.Request.Context(), userID(c), appID, req.FileName, req.Kind, req.URL, req.Size)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, doc)
}

// ListDocuments godoc
// @ID          listDocuments
// @Summary     List an application's documents
// @Tags        Documents
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Application ID (UUID)"  format(uuid)
//
// @Success     200  {array}  domain.Document
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Application not found"
// @Router      /applications/{id}/documents [get]
func (h *Handlers) ListDocuments(c *gin.Context) {
	appID := c.Param("id")
	if _, err := uuid.Parse(appID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	docs, err := h.docSvc.List(c.Request.Context(), userID(c), appID)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, docs)
}

// DeleteDocument godoc
// @ID          deleteDocument
// @Summary     Remove a document
// @Tags        Documents
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Document not found"
// @Router      /documents/{id} [delete]
func (h *Handlers) DeleteDocument(c *gin.Context) {
	docID := c.Param("id")
	if _, err := uuid.Parse(docID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id must be a UUID")
		return
	}
	if err := h.docSvc.Delete(c.Request.Context(), userID(c), docID); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}
