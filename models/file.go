package models

import "time"

// QuarantinePrefix is the path namespace soft-deleted files are moved into.
// The row survives deletion; only the stored content is renamed out of the
// serving namespace.
const QuarantinePrefix = "deleted/"

// File is a stored upload: post attachment or profile picture. Path is
// relative to the media root and content-addressed by a random name.
type File struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Path      string    `gorm:"size:255;uniqueIndex;not null" json:"path"`
	MimeType  string    `gorm:"size:64;not null" json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
