package models

import (
	"time"

	"atelier/atelier/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is one unit of work: a named chat transcript plus the latest
// generated code pair, owned by exactly one user. Transcript and code
// live in jsonb columns so the record behaves like a single document.
type Session struct {
	ID            uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID           `json:"userId" gorm:"type:uuid;not null;index"`
	User          User                `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Name          string              `json:"name" gorm:"type:varchar(255);not null;default:'New Project'"`
	ChatHistory   types.ChatHistory   `json:"chatHistory" gorm:"type:jsonb;not null;default:'[]'"`
	GeneratedCode types.GeneratedCode `json:"generatedCode" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt     time.Time           `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time           `json:"updatedAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SessionSummary is the list-view projection: no transcript, no code.
type SessionSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
