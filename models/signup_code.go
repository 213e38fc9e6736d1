package models

import "time"

// SignUpCode tracks one emailed verification code. Resending deactivates all
// earlier codes for the address; a verified code marks the email registered.
type SignUpCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;index;not null" json:"email"`
	Code      string    `gorm:"size:8;not null" json:"-"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	Verified  bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}
