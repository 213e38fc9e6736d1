package models

import "time"

// Post is a tagged discussion item created by a user. Vote membership lives
// in two join tables; a voter must never appear in both at once, which the
// store guarantees by always removing from the opposite set before adding.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Title      string     `gorm:"size:256;not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Anonymous  bool       `gorm:"not null;default:false" json:"anonymous"`
	Visibility Visibility `gorm:"not null;default:0" json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User        User   `json:"-"`
	Tags        []Tag  `gorm:"many2many:post_tags" json:"-"`
	Attachments []File `gorm:"many2many:post_attachments" json:"-"`
	Upvoters    []User `gorm:"many2many:post_upvoters" json:"-"`
	Downvoters  []User `gorm:"many2many:post_downvoters" json:"-"`
}

// ReadableBy applies the visibility policy for this post.
func (p *Post) ReadableBy(viewerID uint) bool {
	return p.Visibility.ReadableBy(p.UserID, viewerID)
}

// Reply is a comment under a post. It shares the post's visibility states
// and vote-set shape.
type Reply struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PostID     uint       `gorm:"index;not null" json:"post_id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Visibility Visibility `gorm:"not null;default:0" json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User       User   `json:"-"`
	Upvoters   []User `gorm:"many2many:reply_upvoters" json:"-"`
	Downvoters []User `gorm:"many2many:reply_downvoters" json:"-"`
}

// ReadableBy applies the visibility policy for this reply.
func (r *Reply) ReadableBy(viewerID uint) bool {
	return r.Visibility.ReadableBy(r.UserID, viewerID)
}
