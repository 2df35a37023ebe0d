// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Document
// model (file metadata attached to an application).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
)

// CreateDocument inserts document metadata for an application. The referenced
// application must exist; the foreign key constraint propagates otherwise.
func CreateDocument(ctx context.Context, db *gorm.DB, applicationID, fileName, kind, url string, size int64) (*domain.Document, error) {
	d := &domain.Document{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		FileName:      fileName,
		Kind:          kind,
		URL:           url,
		Size:          size,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// ListDocuments returns all documents attached to an application, newest
// first. It returns an empty slice when there are none.
func ListDocuments(ctx context.Context, db *gorm.DB, applicationID string) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetDocument fetches a document by id, or ErrNotFound.
func GetDocument(ctx context.Context, db *gorm.DB, id string) (*domain.Document, error) {
	var d domain.Document
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDocument removes a document row, returning ErrNotFound when no row
// was deleted.
func DeleteDocument(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
