// Package services – DocumentService
//
// This file implements document metadata management. Documents hang off an
// application; every operation re-checks that the application belongs to the
// calling user, and a foreign record is indistinguishable from a missing one.
// The file body itself lives in external storage — only name, kind, URL, and
// size are tracked here.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/repo"
)

// DocumentService implements the use cases around attached documents.
type DocumentService struct {
	// DB is the database handle used for all document operations.
	DB *gorm.DB
}

// Attach records document metadata under an application owned by userID.
// File name and URL are required.
func (s *DocumentService) Attach(ctx context.Context, userID, applicationID, fileName, kind, url string, size int64) (*domain.Document, error) {
	var missing []string
	if strings.TrimSpace(fileName) == "" {
		missing = append(missing, "file_name")
	}
	if strings.TrimSpace(url) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	if _, err := repo.GetApplication(ctx, s.DB, applicationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return repo.CreateDocument(ctx, s.DB, applicationID, fileName, kind, url, size)
}

// List returns the documents of an application owned by userID.
func (s *DocumentService) List(ctx context.Context, userID, applicationID string) ([]domain.Document, error) {
	if _, err := repo.GetApplication(ctx, s.DB, applicationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return repo.ListDocuments(ctx, s.DB, applicationID)
}

// Delete removes a document after verifying, through its application, that it
// belongs to userID.
func (s *DocumentService) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := repo.GetDocument(ctx, s.DB, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	if _, err := repo.GetApplication(ctx, s.DB, doc.ApplicationID, userID); err != nil {
		// Not owned by this user: indistinguishable from missing.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	if err := repo.DeleteDocument(ctx, s.DB, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}
