package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/middleware"
	"github.com/campuslink/campuslink/models"
	"github.com/campuslink/campuslink/store"
	"github.com/campuslink/campuslink/utils"
	"github.com/campuslink/campuslink/views"
)

// PostController handles the post lifecycle, feeds and voting.
type PostController struct {
	content *store.ContentStore
	votes   *store.VoteLedger
}

func NewPostController(content *store.ContentStore, votes *store.VoteLedger) *PostController {
	return &PostController{content: content, votes: votes}
}

type postInput struct {
	Title         string  `json:"title" binding:"required"`
	Content       string  `json:"content" binding:"required"`
	TagIDs        []uint  `json:"tag_ids"`
	AttachmentIDs []uint  `json:"attachment_ids"`
	Anonymous     bool    `json:"anonymous"`
	Visibility    *string `json:"visibility"`
}

// Create stores a new post owned by the caller.
func (p *PostController) Create(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var in postInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "title and content are required")
		return
	}

	vis, ok := parseVisibilityField(ctx, in.Visibility)
	if !ok {
		return
	}

	post, err := p.content.CreatePost(userID, store.NewPost{
		Title:         utils.Sanitize(in.Title),
		Content:       utils.Sanitize(in.Content),
		TagIDs:        in.TagIDs,
		AttachmentIDs: in.AttachmentIDs,
		Anonymous:     in.Anonymous,
		Visibility:    vis,
	})
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", views.NewPostView(post, userID))
}

// Get returns a single post when the viewer may read it.
func (p *PostController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(ctx)

	post, err := p.content.GetPost(id, viewerID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewPostView(post, viewerID))
}

type postPatchInput struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	TagIDs     *[]uint `json:"tag_ids"`
	Anonymous  *bool   `json:"anonymous"`
	Visibility *string `json:"visibility"`
}

// Update applies a partial edit to the caller's own post.
func (p *PostController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var in postPatchInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request body")
		return
	}

	vis, ok := parseVisibilityField(ctx, in.Visibility)
	if !ok {
		return
	}

	patch := store.PostPatch{
		TagIDs:     in.TagIDs,
		Anonymous:  in.Anonymous,
		Visibility: vis,
	}
	if in.Title != nil {
		clean := utils.Sanitize(*in.Title)
		patch.Title = &clean
	}
	if in.Content != nil {
		clean := utils.Sanitize(*in.Content)
		patch.Content = &clean
	}

	post, err := p.content.UpdatePost(id, userID, patch)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewPostView(post, userID))
}

// Delete moves the caller's post into the terminal deleted state and
// quarantines its attachments.
func (p *PostController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	if err := p.content.SoftDeletePost(id, userID); err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, nil)
}

// List returns the global feed, newest first.
func (p *PostController) List(ctx *gin.Context) {
	viewerID, _ := middleware.CurrentUserID(ctx)
	limit, offset := parsePagination(ctx)

	posts, total, err := p.content.ListPosts(viewerID, limit, offset)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, pagedData(views.NewPostViews(posts, viewerID), total, limit, offset))
}

// Filtered returns posts carrying at least one of the caller's college tags.
func (p *PostController) Filtered(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}
	limit, offset := parsePagination(ctx)

	posts, total, err := p.content.FilteredByCollegeTags(userID, limit, offset)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, pagedData(views.NewPostViews(posts, userID), total, limit, offset))
}

// Current returns the caller's own posts, hidden ones included.
func (p *PostController) Current(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}
	limit, offset := parsePagination(ctx)

	posts, total, err := p.content.PostsByAuthor(userID, userID, limit, offset)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, pagedData(views.NewPostViews(posts, userID), total, limit, offset))
}

// ByUser returns another user's posts visible to the viewer. Anonymity does
// not hide posts from the author's own listing; it only masks attribution in
// views for other viewers.
func (p *PostController) ByUser(ctx *gin.Context) {
	authorID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(ctx)
	limit, offset := parsePagination(ctx)

	posts, total, err := p.content.PostsByAuthor(authorID, viewerID, limit, offset)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, pagedData(views.NewPostViews(posts, viewerID), total, limit, offset))
}

// Replies lists the replies under a post, newest first.
func (p *PostController) Replies(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(ctx)

	replies, err := p.content.RepliesForPost(id, viewerID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewReplyViews(replies, viewerID))
}

// Upvote records the caller's upvote, displacing any prior downvote.
func (p *PostController) Upvote(ctx *gin.Context) {
	p.vote(ctx, store.VoteUp)
}

// Downvote records the caller's downvote, displacing any prior upvote.
func (p *PostController) Downvote(ctx *gin.Context) {
	p.vote(ctx, store.VoteDown)
}

func (p *PostController) vote(ctx *gin.Context, dir store.VoteDirection) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	post, err := p.content.GetPost(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	if err := p.votes.Apply(post, userID, dir); err != nil {
		respondStoreError(ctx, err)
		return
	}

	post, err = p.content.GetPost(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewPostView(post, userID))
}

// Unvote withdraws the caller's vote in either direction.
func (p *PostController) Unvote(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	post, err := p.content.GetPost(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	if err := p.votes.Remove(post, userID); err != nil {
		respondStoreError(ctx, err)
		return
	}

	post, err = p.content.GetPost(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewPostView(post, userID))
}

// Stats returns vote tallies and the viewer's own vote without rendering the
// full post body.
func (p *PostController) Stats(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(ctx)

	post, err := p.content.GetPost(id, viewerID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	up, down := p.votes.Tally(post)
	userVote := 0
	if viewerID != 0 {
		userVote, err = p.votes.VoterState(post, viewerID)
		if err != nil {
			respondStoreError(ctx, err)
			return
		}
	}
	utils.Success(ctx, gin.H{
		"upvotes":   up,
		"downvotes": down,
		"user_vote": userVote,
	})
}

// parseVisibilityField converts an optional visibility string from the
// request body. Writes the error response itself on bad input.
func parseVisibilityField(ctx *gin.Context, raw *string) (*models.Visibility, bool) {
	if raw == nil {
		return nil, true
	}
	v, err := models.ParseVisibility(*raw)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid visibility")
		return nil, false
	}
	return &v, true
}
