package models

// Designation is a self-declared role on a profile. Unverified designations
// are visible only to their owner until moderation marks them verified.
type Designation struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:64;not null" json:"name"`
	Verified bool   `gorm:"not null;default:false" json:"verified"`
}
