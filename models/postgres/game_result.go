package postgres

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameResult is a scored play linking a user, a team and a game. Results are
// created unverified by the owning user; an admin may adjust the points and
// set the verification flag together with a reference to their own account.
// AdminUserID is a weak reference: it is cleared when that admin is deleted.
type GameResult struct {
	ResultID        string    `gorm:"size:20;primaryKey" json:"result_id"`
	UserID          string    `gorm:"type:uuid;not null;index" json:"user_id"`
	TeamID          string    `gorm:"size:20;not null;index" json:"team_id"`
	GameID          string    `gorm:"size:20;not null;index" json:"game_id"`
	PointsScored    int       `gorm:"not null;default:0" json:"points_scored"`
	Notes           string    `gorm:"type:text" json:"notes"`
	PlayedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"played_at"`
	VerifiedByAdmin bool      `gorm:"not null;default:false" json:"verified_by_admin"`
	AdminUserID     *string   `gorm:"type:uuid" json:"admin_user_id,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Team Team `gorm:"foreignKey:TeamID" json:"-"`
	Game Game `gorm:"foreignKey:GameID" json:"-"`
}

func (r *GameResult) BeforeCreate(tx *gorm.DB) error {
	if r.ResultID == "" {
		r.ResultID = "RESULT-" + strings.ToUpper(uuid.New().String()[:8])
	}
	return nil
}
