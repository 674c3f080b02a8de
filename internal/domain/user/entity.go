// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles stored on the identity row. The column is an open string but only
// these two values are meaningful to the application.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents the identity row backing an authenticated session.
// Password is empty for accounts created through the OAuth flow.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string    `gorm:"size:255" json:"-"`
	FullName  string    `gorm:"size:255" json:"full_name,omitempty"`
	Role      string    `gorm:"not null;default:'user';size:20" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address represents a delivery address
type Address struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Phone        string    `gorm:"not null;size:20" json:"phone"`
	AddressLine1 string    `gorm:"not null;size:255" json:"address_line1"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2,omitempty"`
	City         string    `gorm:"not null;size:100" json:"city"`
	State        string    `gorm:"not null;size:100" json:"state"`
	Pincode      string    `gorm:"not null;size:10" json:"pincode"`
	IsDefault    bool      `gorm:"default:false" json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// BeforeCreate assigns an ID and normalizes the email
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

// BeforeCreate assigns an ID
func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the identity carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the full name or the email when no name is set
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
