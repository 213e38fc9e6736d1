package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/models"
)

func TestCreateAndGetPost(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	tag := createTag(t, "events")

	post, err := s.CreatePost(alice.ID, NewPost{
		Title:   "welcome week",
		Content: "schedule inside",
		TagIDs:  []uint{tag.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityVisible, post.Visibility, "posts default to visible")
	require.Len(t, post.Tags, 1)
	assert.Equal(t, "events", post.Tags[0].Name)

	got, err := s.GetPost(post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "welcome week", got.Title)
	assert.Equal(t, alice.ID, got.User.ID, "author is preloaded for presentation")
}

func TestCreatePostValidation(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")

	var verr *ValidationError

	_, err := s.CreatePost(alice.ID, NewPost{Title: "  ", Content: "x"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = s.CreatePost(alice.ID, NewPost{Title: strings.Repeat("a", 257), Content: "x"})
	require.ErrorAs(t, err, &verr)

	_, err = s.CreatePost(alice.ID, NewPost{Title: "t", Content: ""})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "content", verr.Field)

	deleted := models.VisibilityDeleted
	_, err = s.CreatePost(alice.ID, NewPost{Title: "t", Content: "x", Visibility: &deleted})
	require.ErrorAs(t, err, &verr)

	_, err = s.CreatePost(alice.ID, NewPost{Title: "t", Content: "x", TagIDs: []uint{9999}})
	require.ErrorAs(t, err, &verr, "unknown tag ids are rejected")
}

func TestGetPostVisibilityFolding(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	hidden := models.VisibilityHidden
	post, err := s.CreatePost(alice.ID, NewPost{Title: "draft", Content: "wip", Visibility: &hidden})
	require.NoError(t, err)

	_, err = s.GetPost(post.ID, alice.ID)
	assert.NoError(t, err, "hidden content stays readable by its owner")

	_, err = s.GetPost(post.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPost(post.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SoftDeletePost(post.ID, alice.ID))
	_, err = s.GetPost(post.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound, "deleted content is unreadable even by its owner")

	_, err = s.GetPost(9999, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound, "absent and invisible are indistinguishable")
}

func TestUpdatePostOwnershipAndPatch(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	post, err := s.CreatePost(alice.ID, NewPost{Title: "old title", Content: "body"})
	require.NoError(t, err)

	newTitle := "new title"
	_, err = s.UpdatePost(post.ID, bob.ID, PostPatch{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.UpdatePost(post.ID, 0, PostPatch{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	anon := true
	updated, err := s.UpdatePost(post.ID, alice.ID, PostPatch{Title: &newTitle, Anonymous: &anon})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.True(t, updated.Anonymous)
	assert.Equal(t, "body", updated.Content, "unpatched fields keep their values")

	deleted := models.VisibilityDeleted
	var verr *ValidationError
	_, err = s.UpdatePost(post.ID, alice.ID, PostPatch{Visibility: &deleted})
	require.ErrorAs(t, err, &verr, "visibility cannot be patched into the terminal state")
}

func TestUpdatePostReplacesTagSet(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	events := createTag(t, "events")
	sports := createTag(t, "sports")

	post, err := s.CreatePost(alice.ID, NewPost{
		Title: "t", Content: "x", TagIDs: []uint{events.ID},
	})
	require.NoError(t, err)

	newSet := []uint{sports.ID}
	updated, err := s.UpdatePost(post.ID, alice.ID, PostPatch{TagIDs: &newSet})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "sports", updated.Tags[0].Name)

	empty := []uint{}
	updated, err = s.UpdatePost(post.ID, alice.ID, PostPatch{TagIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags, "an empty set clears all tags")
}

func TestSoftDeletePostQuarantinesAttachments(t *testing.T) {
	requireDB(t)
	files := NewFileStore(testDB, t.TempDir())
	s := NewContentStore(testDB, files)
	alice := createUser(t, "alice")

	f, err := files.StoreUpload(strings.NewReader("attachment body"), "text/plain")
	require.NoError(t, err)

	post, err := s.CreatePost(alice.ID, NewPost{
		Title: "with file", Content: "x", AttachmentIDs: []uint{f.ID},
	})
	require.NoError(t, err)
	require.Len(t, post.Attachments, 1)

	require.NoError(t, s.SoftDeletePost(post.ID, alice.ID))

	stored, err := files.GetFile(f.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Path, models.QuarantinePrefix))
	_, _, err = files.Open(stored.Path)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuarantinedFileCannotBeAttached(t *testing.T) {
	requireDB(t)
	files := NewFileStore(testDB, t.TempDir())
	s := NewContentStore(testDB, files)
	alice := createUser(t, "alice")

	f, err := files.StoreUpload(strings.NewReader("body"), "text/plain")
	require.NoError(t, err)
	require.NoError(t, files.SoftDelete(f))

	var verr *ValidationError
	_, err = s.CreatePost(alice.ID, NewPost{
		Title: "t", Content: "x", AttachmentIDs: []uint{f.ID},
	})
	require.ErrorAs(t, err, &verr)
}

func TestReplyLifecycle(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	post, err := s.CreatePost(alice.ID, NewPost{Title: "q", Content: "anyone?"})
	require.NoError(t, err)

	reply, err := s.CreateReply(bob.ID, post.ID, "me", nil)
	require.NoError(t, err)
	assert.Equal(t, post.ID, reply.PostID)
	assert.Equal(t, models.VisibilityVisible, reply.Visibility)

	replies, err := s.RepliesForPost(post.ID, 0)
	require.NoError(t, err)
	assert.Len(t, replies, 1)

	assert.ErrorIs(t, s.SoftDeleteReply(reply.ID, alice.ID), ErrForbidden)
	require.NoError(t, s.SoftDeleteReply(reply.ID, bob.ID))

	_, err = s.GetReply(reply.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	replies, err = s.RepliesForPost(post.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, replies)

	assert.ErrorIs(t, s.SoftDeleteReply(reply.ID, bob.ID), ErrNotFound, "deleting twice reports not found")
}

func TestReplyToInvisiblePost(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	hidden := models.VisibilityHidden
	post, err := s.CreatePost(alice.ID, NewPost{Title: "draft", Content: "wip", Visibility: &hidden})
	require.NoError(t, err)

	_, err = s.CreateReply(bob.ID, post.ID, "hello?", nil)
	assert.ErrorIs(t, err, ErrNotFound, "replying must not confirm a hidden post exists")

	_, err = s.CreateReply(alice.ID, post.ID, "note to self", nil)
	assert.NoError(t, err, "the owner can reply to their own hidden post")

	_, err = s.RepliesForPost(post.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsVisibilityAndOrder(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	first, err := s.CreatePost(alice.ID, NewPost{Title: "first", Content: "x"})
	require.NoError(t, err)
	second, err := s.CreatePost(alice.ID, NewPost{Title: "second", Content: "x"})
	require.NoError(t, err)
	hidden := models.VisibilityHidden
	draft, err := s.CreatePost(alice.ID, NewPost{Title: "draft", Content: "x", Visibility: &hidden})
	require.NoError(t, err)

	require.NoError(t, s.SoftDeletePost(second.ID, alice.ID))

	// nudge timestamps apart so ordering does not depend on insert speed
	require.NoError(t, testDB.Model(&models.Post{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	posts, total, err := s.ListPosts(bob.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, first.ID, posts[0].ID)

	posts, total, err = s.ListPosts(alice.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "owners see their own hidden posts listed")
	assert.Equal(t, draft.ID, posts[0].ID, "newest first")
}

func TestPostsByAuthorExcludesAnonymous(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	named, err := s.CreatePost(alice.ID, NewPost{Title: "study group", Content: "x"})
	require.NoError(t, err)
	_, err = s.CreatePost(alice.ID, NewPost{Title: "secret confession", Content: "x", Anonymous: true})
	require.NoError(t, err)

	// the listing is keyed by the author, so an anonymous post appearing in
	// it would attribute the post regardless of view-level masking
	posts, total, err := s.PostsByAuthor(alice.ID, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, named.ID, posts[0].ID)

	posts, total, err = s.PostsByAuthor(alice.ID, 0, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, named.ID, posts[0].ID)

	posts, total, err = s.PostsByAuthor(alice.ID, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "the author sees their own anonymous posts")
	assert.Len(t, posts, 2)
}

func TestCreatePostTitleLimitCountsRunes(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")

	post, err := s.CreatePost(alice.ID, NewPost{Title: strings.Repeat("é", 256), Content: "x"})
	require.NoError(t, err, "256 multi-byte characters fit the limit")
	assert.Equal(t, 256, len([]rune(post.Title)))

	var verr *ValidationError
	_, err = s.CreatePost(alice.ID, NewPost{Title: strings.Repeat("é", 257), Content: "x"})
	require.ErrorAs(t, err, &verr)

	over := strings.Repeat("é", 257)
	_, err = s.UpdatePost(post.ID, alice.ID, PostPatch{Title: &over})
	require.ErrorAs(t, err, &verr)
}

func TestFilteredByCollegeTags(t *testing.T) {
	requireDB(t)
	s := newTestContentStore(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")

	events := createTag(t, "events")
	sports := createTag(t, "sports")

	college := models.College{Name: "State", Tags: []models.Tag{*events}}
	require.NoError(t, testDB.Create(&college).Error)
	require.NoError(t, testDB.Model(alice).Update("college_id", college.ID).Error)

	tagged, err := s.CreatePost(bob.ID, NewPost{Title: "tagged", Content: "x", TagIDs: []uint{events.ID}})
	require.NoError(t, err)
	_, err = s.CreatePost(bob.ID, NewPost{Title: "other", Content: "x", TagIDs: []uint{sports.ID}})
	require.NoError(t, err)
	_, err = s.CreatePost(bob.ID, NewPost{Title: "untagged", Content: "x"})
	require.NoError(t, err)

	posts, total, err := s.FilteredByCollegeTags(alice.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, tagged.ID, posts[0].ID)

	posts, total, err = s.FilteredByCollegeTags(bob.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "a viewer without a college gets an empty feed")
	assert.Empty(t, posts)
}
