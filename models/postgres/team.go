package postgres

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team is a named group owned by exactly one user. Teams are soft-deleted by
// clearing IsActive instead of removing the row.
type Team struct {
	TeamID    string    `gorm:"size:20;primaryKey" json:"team_id"`
	TeamName  string    `gorm:"size:255;not null" json:"team_name"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.TeamID == "" {
		t.TeamID = "TEAM-" + strings.ToUpper(uuid.New().String()[:8])
	}
	return nil
}
