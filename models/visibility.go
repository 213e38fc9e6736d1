package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Visibility is the lifecycle state of a content item. Visible and Hidden
// flip freely under owner control; Deleted is terminal.
type Visibility uint8

const (
	VisibilityVisible Visibility = iota
	VisibilityHidden
	VisibilityDeleted
)

// String returns the canonical label used on the wire.
func (v Visibility) String() string {
	switch v {
	case VisibilityVisible:
		return "Visible"
	case VisibilityHidden:
		return "Hidden"
	case VisibilityDeleted:
		return "Deleted"
	}
	return fmt.Sprintf("Visibility(%d)", uint8(v))
}

// ParseVisibility accepts the wire labels case-insensitively.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "visible":
		return VisibilityVisible, nil
	case "hidden":
		return VisibilityHidden, nil
	case "deleted":
		return VisibilityDeleted, nil
	}
	return VisibilityVisible, fmt.Errorf("unknown visibility %q", s)
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Visibility) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseVisibility(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ReadableBy decides whether an item in this state can be read by viewerID.
// Visible items are readable by anyone, including unauthenticated viewers
// (viewerID 0). Hidden items are readable only by their owner. Deleted items
// are readable by nobody; callers translate that into NotFound so deletion
// does not reveal prior existence.
func (v Visibility) ReadableBy(ownerID, viewerID uint) bool {
	switch v {
	case VisibilityVisible:
		return true
	case VisibilityHidden:
		return viewerID != 0 && viewerID == ownerID
	default:
		return false
	}
}
