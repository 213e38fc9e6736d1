package models

// Tag labels posts and colleges. The filtered feed intersects a viewer's
// college tags with post tags.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:16;uniqueIndex;not null" json:"name"`

	Subscribers []User `gorm:"many2many:tag_subscribers" json:"-"`
}
