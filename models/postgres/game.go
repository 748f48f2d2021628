package postgres

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game is an admin-managed activity definition with a scoring range.
// MinPoints <= MaxPoints is enforced at the API boundary before writes.
type Game struct {
	GameID          string    `gorm:"size:20;primaryKey" json:"game_id"`
	GameName        string    `gorm:"size:255;not null;uniqueIndex" json:"game_name"`
	GameDescription string    `gorm:"type:text" json:"game_description"`
	MinPoints       int       `gorm:"not null;default:0" json:"min_points"`
	MaxPoints       int       `gorm:"not null;default:100" json:"max_points"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.GameID == "" {
		g.GameID = "GAME-" + strings.ToUpper(uuid.New().String()[:8])
	}
	return nil
}
