package store

import (
	"gorm.io/gorm"

	"github.com/campuslink/campuslink/models"
)

// VoteDirection is a cast vote: up or down.
type VoteDirection int

const (
	VoteUp   VoteDirection = 1
	VoteDown VoteDirection = -1
)

// VoteLedger maintains the per-item upvoter/downvoter sets for posts and
// replies. All operations are unconditional set mutations: removing an absent
// member is a defined no-op, which is what lets Apply clear the opposite set
// without inspecting prior state and still preserve mutual exclusion.
type VoteLedger struct {
	db *gorm.DB
}

// NewVoteLedger creates a VoteLedger over the given DB.
func NewVoteLedger(db *gorm.DB) *VoteLedger {
	return &VoteLedger{db: db}
}

// item is a *models.Post or *models.Reply with populated primary key; both
// carry Upvoters/Downvoters associations under the same names.

// Apply records a vote. The voter is first removed from the opposite set,
// then added to the target set, so repeated identical calls are idempotent
// and the voter can never end up in both sets.
func (l *VoteLedger) Apply(item interface{}, voterID uint, dir VoteDirection) error {
	target, opposite := "Upvoters", "Downvoters"
	if dir == VoteDown {
		target, opposite = opposite, target
	}
	voter := models.User{ID: voterID}
	if err := l.db.Model(item).Association(opposite).Delete(&voter); err != nil {
		return err
	}
	return l.db.Model(item).Association(target).Append(&voter)
}

// Remove clears the voter from both sets. Calling it with no prior vote is a
// no-op, never an error.
func (l *VoteLedger) Remove(item interface{}, voterID uint) error {
	voter := models.User{ID: voterID}
	if err := l.db.Model(item).Association("Upvoters").Delete(&voter); err != nil {
		return err
	}
	return l.db.Model(item).Association("Downvoters").Delete(&voter)
}

// Tally returns the cardinalities of the two sets.
func (l *VoteLedger) Tally(item interface{}) (up, down int64) {
	up = l.db.Model(item).Association("Upvoters").Count()
	down = l.db.Model(item).Association("Downvoters").Count()
	return up, down
}

// VoterState reports the viewer's current vote: 1, -1, or 0 when the viewer
// is unauthenticated or has not voted. The sets are mutually exclusive, so
// lookup order does not matter.
func (l *VoteLedger) VoterState(item interface{}, viewerID uint) (int, error) {
	if viewerID == 0 {
		return 0, nil
	}
	var matches []models.User
	if err := l.db.Model(item).Association("Upvoters").Find(&matches, "users.id = ?", viewerID); err != nil {
		return 0, err
	}
	if len(matches) > 0 {
		return 1, nil
	}
	if err := l.db.Model(item).Association("Downvoters").Find(&matches, "users.id = ?", viewerID); err != nil {
		return 0, err
	}
	if len(matches) > 0 {
		return -1, nil
	}
	return 0, nil
}
