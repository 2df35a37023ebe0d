// Package domain defines the persistence models for users, job applications,
// and attached documents. These types are mapped with GORM and form the core
// data layer of the ApplicationTrack backend.
package domain

import (
	"time"
)

// User represents a registered account. Applications reference their owner by
// user id; ownership never changes after creation.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username / Email: unique login identifiers.
//   - PasswordHash: bcrypt hash; never serialized.
//   - CreatedAt: timestamp managed by GORM.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(80);not null;uniqueIndex"`
	Email        string    `json:"email"      gorm:"type:varchar(120);not null;uniqueIndex"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Contact holds the optional recruiter contact attached to an application.
// All fields may be empty.
type Contact struct {
	Name  string `json:"name,omitempty"  gorm:"column:contact_name;type:varchar(200)"`
	Email string `json:"email,omitempty" gorm:"column:contact_email;type:varchar(200)"`
	Phone string `json:"phone,omitempty" gorm:"column:contact_phone;type:varchar(50)"`
}

// Application represents one tracked job application.
//
// Invariants enforced by the service layer:
//   - Company and Description are never empty once the record exists.
//   - Status is always a member of the status enumeration; transitions only
//     happen through the state machine.
//   - UserID never changes after creation.
//
// Insertion order is realized by the table's implicit SQLite rowid; an extra
// autoincrement column would displace ID as the primary key and break the
// documents foreign key.
type Application struct {
	ID     string `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID string `json:"user_id" gorm:"type:char(36);not null;index:idx_user_applications"`

	Company     string    `json:"company"     gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	AppliedAt   time.Time `json:"applied_at"  gorm:"not null;index"`
	Status      string    `json:"status"      gorm:"type:varchar(50);not null;default:'pending';index"`

	Notes        string   `json:"notes,omitempty"         gorm:"type:text"`
	Salary       string   `json:"salary,omitempty"        gorm:"type:varchar(100)"`
	Location     string   `json:"location,omitempty"      gorm:"type:varchar(200)"`
	ContractTags []string `json:"contract_tags,omitempty" gorm:"type:text;serializer:json"`

	Contact Contact `json:"contact" gorm:"embedded"`

	ReminderAt   *time.Time `json:"reminder_at,omitempty"   gorm:"index"`
	ReminderNote string     `json:"reminder_note,omitempty" gorm:"type:varchar(500)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string { return "applications" }

// Document records metadata for a file attached to an application (CV, cover
// letter, offer PDF). The file body lives in external storage; only the URL is
// kept here. Documents are cascade-deleted with their application.
type Document struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	ApplicationID string    `json:"application_id" gorm:"type:char(36);not null;index"`
	FileName      string    `json:"file_name"      gorm:"type:varchar(255);not null"`
	Kind          string    `json:"kind"           gorm:"type:varchar(50);not null"`
	URL           string    `json:"url"            gorm:"type:varchar(500);not null"`
	Size          int64     `json:"size,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	Application Application `json:"-" gorm:"foreignKey:ApplicationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }
