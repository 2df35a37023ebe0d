package domain

import "time"

// Idempotency records the outcome of a previously processed create request,
// keyed by (user_id, key). It lets clients retry POST /applications safely:
// a replay returns the originally created record instead of inserting a
// duplicate.
type Idempotency struct {
	ID            string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_key,priority:1"`
	Key           string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_key,priority:2"`
	ApplicationID string    `gorm:"type:TEXT NOT NULL"`
	Status        int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt     time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
