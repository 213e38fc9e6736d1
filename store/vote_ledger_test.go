package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/models"
)

func TestVoteMutualExclusion(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	ledger := NewVoteLedger(testDB)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	post, err := s.CreatePost(alice.ID, NewPost{Title: "t", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, ledger.Apply(post, bob.ID, VoteUp))
	up, down := ledger.Tally(post)
	assert.EqualValues(t, 1, up)
	assert.EqualValues(t, 0, down)

	// flipping the vote clears the opposite set
	require.NoError(t, ledger.Apply(post, bob.ID, VoteDown))
	up, down = ledger.Tally(post)
	assert.EqualValues(t, 0, up)
	assert.EqualValues(t, 1, down)

	state, err := ledger.VoterState(post, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, state)
}

func TestVoteIdempotence(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	ledger := NewVoteLedger(testDB)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	post, err := s.CreatePost(alice.ID, NewPost{Title: "t", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, ledger.Apply(post, bob.ID, VoteUp))
	require.NoError(t, ledger.Apply(post, bob.ID, VoteUp))
	require.NoError(t, ledger.Apply(post, bob.ID, VoteUp))

	up, down := ledger.Tally(post)
	assert.EqualValues(t, 1, up, "repeated identical votes count once")
	assert.EqualValues(t, 0, down)
}

func TestVoteRemoval(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	ledger := NewVoteLedger(testDB)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	post, err := s.CreatePost(alice.ID, NewPost{Title: "t", Content: "x"})
	require.NoError(t, err)

	// removing with no prior vote is a defined no-op
	require.NoError(t, ledger.Remove(post, bob.ID))

	require.NoError(t, ledger.Apply(post, bob.ID, VoteUp))
	require.NoError(t, ledger.Remove(post, bob.ID))

	up, down := ledger.Tally(post)
	assert.EqualValues(t, 0, up)
	assert.EqualValues(t, 0, down)

	state, err := ledger.VoterState(post, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state)
}

func TestVotesAreIndependentPerVoter(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	ledger := NewVoteLedger(testDB)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")
	carol := createUser(t, "carol")

	post, err := s.CreatePost(alice.ID, NewPost{Title: "t", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, ledger.Apply(post, bob.ID, VoteUp))
	require.NoError(t, ledger.Apply(post, carol.ID, VoteDown))
	require.NoError(t, ledger.Apply(post, alice.ID, VoteUp), "owners may vote on their own content")

	up, down := ledger.Tally(post)
	assert.EqualValues(t, 2, up)
	assert.EqualValues(t, 1, down)

	state, err := ledger.VoterState(post, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state)
	state, err = ledger.VoterState(post, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, state)
}

func TestReplyVotes(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	ledger := NewVoteLedger(testDB)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	post, err := s.CreatePost(alice.ID, NewPost{Title: "t", Content: "x"})
	require.NoError(t, err)
	reply, err := s.CreateReply(bob.ID, post.ID, "me", nil)
	require.NoError(t, err)

	require.NoError(t, ledger.Apply(reply, alice.ID, VoteUp))
	require.NoError(t, ledger.Apply(reply, alice.ID, VoteDown))

	up, down := ledger.Tally(reply)
	assert.EqualValues(t, 0, up)
	assert.EqualValues(t, 1, down)

	// the post's sets are untouched by reply votes
	up, down = ledger.Tally(post)
	assert.EqualValues(t, 0, up)
	assert.EqualValues(t, 0, down)

	var fresh models.Reply
	require.NoError(t, testDB.Preload("Upvoters").Preload("Downvoters").First(&fresh, reply.ID).Error)
	assert.Empty(t, fresh.Upvoters)
	assert.Len(t, fresh.Downvoters, 1)
}
