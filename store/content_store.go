package store

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/campuslink/campuslink/models"
	"github.com/campuslink/campuslink/utils"
)

const maxTitleLen = 256

// ContentStore owns Post and Reply rows, their tag and attachment
// associations, and the visibility state transitions. Controllers receive it
// by injection; nothing in this package touches a package-global DB handle.
type ContentStore struct {
	db    *gorm.DB
	files *FileStore
}

// NewContentStore creates a ContentStore over the given DB and file store.
func NewContentStore(db *gorm.DB, files *FileStore) *ContentStore {
	return &ContentStore{db: db, files: files}
}

// NewPost carries the fields accepted at post creation. Attachments arrive as
// IDs of files already persisted through the FileStore upload endpoint.
type NewPost struct {
	Title         string
	Content       string
	TagIDs        []uint
	AttachmentIDs []uint
	Anonymous     bool
	Visibility    *models.Visibility
}

// PostPatch is a partial update: nil fields keep their prior values. A
// non-nil TagIDs replaces the entire tag set.
type PostPatch struct {
	Title      *string
	Content    *string
	TagIDs     *[]uint
	Anonymous  *bool
	Visibility *models.Visibility
}

// visibleTo restricts a query to rows the viewer may list: Visible rows plus
// the viewer's own Hidden rows. Deleted rows never match.
func visibleTo(viewerID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewerID == 0 {
			return db.Where("visibility = ?", models.VisibilityVisible)
		}
		return db.Where("visibility = ? OR (visibility = ? AND user_id = ?)",
			models.VisibilityVisible, models.VisibilityHidden, viewerID)
	}
}

func (s *ContentStore) withPostDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("User.College").
		Preload("User.Picture").
		Preload("User.Designations").
		Preload("Tags").
		Preload("Attachments").
		Preload("Upvoters").
		Preload("Downvoters")
}

func (s *ContentStore) withReplyDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("User.College").
		Preload("User.Picture").
		Preload("User.Designations").
		Preload("Upvoters").
		Preload("Downvoters")
}

// CreatePost validates and persists a new post with its tag and attachment
// associations. Visibility defaults to Visible; a post cannot be born Deleted.
func (s *ContentStore) CreatePost(ownerID uint, in NewPost) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, NewValidationError("title", "title exceeds 256 characters")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, NewValidationError("content", "content is required")
	}

	post := models.Post{
		UserID:    ownerID,
		Title:     title,
		Content:   in.Content,
		Anonymous: in.Anonymous,
	}
	if in.Visibility != nil {
		if *in.Visibility == models.VisibilityDeleted {
			return nil, NewValidationError("visibility", "a post cannot be created deleted")
		}
		post.Visibility = *in.Visibility
	}

	tags, err := s.resolveTags(in.TagIDs)
	if err != nil {
		return nil, err
	}
	attachments, err := s.resolveFiles(in.AttachmentIDs)
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := s.db.Model(&post).Association("Tags").Append(tags); err != nil {
			return nil, err
		}
	}
	if len(attachments) > 0 {
		if err := s.db.Model(&post).Association("Attachments").Append(attachments); err != nil {
			return nil, err
		}
	}
	return s.GetPost(post.ID, ownerID)
}

// GetPost fetches a post with everything the presentation layer needs.
// Absent rows and rows invisible to the viewer both come back as ErrNotFound.
func (s *ContentStore) GetPost(id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := s.withPostDetails(s.db).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !post.ReadableBy(viewerID) {
		return nil, ErrNotFound
	}
	return &post, nil
}

// UpdatePost applies a partial patch after the ownership check. Deleted posts
// cannot be updated, and visibility cannot be patched to Deleted; the delete
// endpoint is the only way into the terminal state.
func (s *ContentStore) UpdatePost(id, callerID uint, patch PostPatch) (*models.Post, error) {
	post, err := s.getLivePost(id)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(post.UserID, callerID); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, NewValidationError("title", "title is required")
		}
		if utf8.RuneCountInString(title) > maxTitleLen {
			return nil, NewValidationError("title", "title exceeds 256 characters")
		}
		post.Title = title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, NewValidationError("content", "content is required")
		}
		post.Content = *patch.Content
	}
	if patch.Anonymous != nil {
		post.Anonymous = *patch.Anonymous
	}
	if patch.Visibility != nil {
		if *patch.Visibility == models.VisibilityDeleted {
			return nil, NewValidationError("visibility", "use the delete endpoint to delete a post")
		}
		post.Visibility = *patch.Visibility
	}

	var tags []models.Tag
	if patch.TagIDs != nil {
		tags, err = s.resolveTags(*patch.TagIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	if patch.TagIDs != nil {
		// full replacement, not a merge
		if err := s.db.Model(post).Association("Tags").Replace(tags); err != nil {
			return nil, err
		}
	}
	return s.GetPost(post.ID, callerID)
}

// SoftDeletePost moves a post into the terminal Deleted state and quarantines
// its attachment files. Attachment purging is best-effort: an individual
// rename failure is logged and the remaining attachments are still processed.
func (s *ContentStore) SoftDeletePost(id, callerID uint) error {
	post, err := s.getLivePost(id)
	if err != nil {
		return err
	}
	if err := RequireOwner(post.UserID, callerID); err != nil {
		return err
	}

	var attachments []models.File
	if err := s.db.Model(post).Association("Attachments").Find(&attachments); err != nil {
		return err
	}

	post.Visibility = models.VisibilityDeleted
	if err := s.db.Save(post).Error; err != nil {
		return err
	}

	for i := range attachments {
		if err := s.files.SoftDelete(&attachments[i]); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("quarantine of attachment %d for post %d failed: %v", attachments[i].ID, post.ID, err)
		}
	}
	return nil
}

// ListPosts returns the viewer's listable posts, newest first.
func (s *ContentStore) ListPosts(viewerID uint, limit, offset int) ([]models.Post, int64, error) {
	return s.listPosts(s.db.Scopes(visibleTo(viewerID)), limit, offset)
}

// PostsByAuthor returns the viewer's listable posts authored by authorID.
// Anonymous posts are excluded for everyone but the author: the listing is
// keyed by the author's id, so including them would attribute the post no
// matter how the view masks the user field.
func (s *ContentStore) PostsByAuthor(authorID, viewerID uint, limit, offset int) ([]models.Post, int64, error) {
	q := s.db.Scopes(visibleTo(viewerID)).Where("user_id = ?", authorID)
	if viewerID != authorID {
		q = q.Where("anonymous = ?", false)
	}
	return s.listPosts(q, limit, offset)
}

// FilteredByCollegeTags returns listable posts carrying at least one of the
// viewer's college tags. A viewer without a college (or a college without
// tags) gets an empty feed.
func (s *ContentStore) FilteredByCollegeTags(viewerID uint, limit, offset int) ([]models.Post, int64, error) {
	var viewer models.User
	err := s.db.Preload("College.Tags").First(&viewer, viewerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	if viewer.College == nil || len(viewer.College.Tags) == 0 {
		return []models.Post{}, 0, nil
	}

	tagIDs := make([]uint, 0, len(viewer.College.Tags))
	for _, t := range viewer.College.Tags {
		tagIDs = append(tagIDs, t.ID)
	}

	q := s.db.Scopes(visibleTo(viewerID)).
		Where("posts.id IN (SELECT post_id FROM post_tags WHERE tag_id IN ?)", tagIDs)
	return s.listPosts(q, limit, offset)
}

func (s *ContentStore) listPosts(q *gorm.DB, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	if err := q.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []models.Post
	err := s.withPostDetails(q).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// CreateReply attaches a reply to a post. The parent must be readable by the
// author; replying to invisible content fails as NotFound so the attempt does
// not confirm the post exists.
func (s *ContentStore) CreateReply(authorID, postID uint, content string, visibility *models.Visibility) (*models.Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "content is required")
	}

	var post models.Post
	err := s.db.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !post.ReadableBy(authorID) {
		return nil, ErrNotFound
	}

	reply := models.Reply{
		PostID:  post.ID,
		UserID:  authorID,
		Content: content,
	}
	if visibility != nil {
		if *visibility == models.VisibilityDeleted {
			return nil, NewValidationError("visibility", "a reply cannot be created deleted")
		}
		reply.Visibility = *visibility
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return nil, err
	}
	return s.GetReply(reply.ID, authorID)
}

// GetReply fetches a reply with presentation details, applying the same
// NotFound folding as GetPost.
func (s *ContentStore) GetReply(id, viewerID uint) (*models.Reply, error) {
	var reply models.Reply
	err := s.withReplyDetails(s.db).First(&reply, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !reply.ReadableBy(viewerID) {
		return nil, ErrNotFound
	}
	return &reply, nil
}

// SoftDeleteReply moves a reply into the terminal Deleted state.
func (s *ContentStore) SoftDeleteReply(id, callerID uint) error {
	var reply models.Reply
	err := s.db.First(&reply, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if reply.Visibility == models.VisibilityDeleted {
		return ErrNotFound
	}
	if err := RequireOwner(reply.UserID, callerID); err != nil {
		return err
	}
	reply.Visibility = models.VisibilityDeleted
	return s.db.Save(&reply).Error
}

// RepliesForPost lists the replies under a post the viewer may see, newest
// first. When the post itself is not readable by the viewer the whole call
// fails with NotFound rather than returning an empty list: an invisible post
// must not reveal that replies exist.
func (s *ContentStore) RepliesForPost(postID, viewerID uint) ([]models.Reply, error) {
	var post models.Post
	err := s.db.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !post.ReadableBy(viewerID) {
		return nil, ErrNotFound
	}

	var replies []models.Reply
	err = s.withReplyDetails(s.db.Scopes(visibleTo(viewerID))).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (s *ContentStore) getLivePost(id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if post.Visibility == models.VisibilityDeleted {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (s *ContentStore) resolveTags(ids []uint) ([]models.Tag, error) {
	ids = utils.UniqueUint(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := s.db.Find(&tags, ids).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, NewValidationError("tags", "unknown tag id")
	}
	return tags, nil
}

func (s *ContentStore) resolveFiles(ids []uint) ([]models.File, error) {
	ids = utils.UniqueUint(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var files []models.File
	if err := s.db.Find(&files, ids).Error; err != nil {
		return nil, err
	}
	if len(files) != len(ids) {
		return nil, NewValidationError("attachments", "unknown file id")
	}
	for _, f := range files {
		if strings.HasPrefix(f.Path, models.QuarantinePrefix) {
			return nil, NewValidationError("attachments", "file has been deleted")
		}
	}
	return files, nil
}
