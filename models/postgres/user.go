package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

/*
 * 'User' contains the blueprint definition of a registered account. Each user
 * carries a unique QR identifier used by the kiosk verification endpoint.
 */
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:10;not null;default:user;index" json:"role"`
	QrID         string     `gorm:"size:20;not null;uniqueIndex" json:"qr_id"`
	QrImage      *string    `gorm:"size:500" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	DateJoined   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	Teams []Team `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns the primary key. The QR identifier is assigned by the
// QR issuer before the record reaches the store, so it is not generated here.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
