package models

import (
	"strings"
	"time"
)

// College groups users by institution. Its tag set drives the filtered post
// feed; its email domains gate registration.
type College struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:108;not null" json:"name"`
	Location string `gorm:"type:text" json:"location"`
	Phone    string `gorm:"size:32" json:"phone"`
	Homepage string `gorm:"size:255" json:"homepage"`
	LogoID   *uint  `json:"-"`
	CoverID  *uint  `json:"-"`

	Logo         *File         `json:"-"`
	Cover        *File         `json:"-"`
	EmailDomains []EmailDomain `gorm:"many2many:college_email_domains" json:"-"`
	Tags         []Tag         `gorm:"many2many:college_tags" json:"-"`
}

// EmailDomain whitelists a registration email domain.
type EmailDomain struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Domain    string    `gorm:"size:32;uniqueIndex;not null" json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// SplitEmailDomain extracts the domain part of an address. ok is false when
// the address has no "@" or an empty local/domain part.
func SplitEmailDomain(email string) (string, bool) {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", false
	}
	return domain, true
}
