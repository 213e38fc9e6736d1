package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/middleware"
	"github.com/campuslink/campuslink/store"
	"github.com/campuslink/campuslink/utils"
	"github.com/campuslink/campuslink/views"
)

// ReplyController handles replies and their votes.
type ReplyController struct {
	content *store.ContentStore
	votes   *store.VoteLedger
}

func NewReplyController(content *store.ContentStore, votes *store.VoteLedger) *ReplyController {
	return &ReplyController{content: content, votes: votes}
}

type replyInput struct {
	Content    string  `json:"content" binding:"required"`
	Visibility *string `json:"visibility"`
}

// Create attaches a reply to a post the caller can read.
func (r *ReplyController) Create(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var in replyInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "content is required")
		return
	}

	vis, ok := parseVisibilityField(ctx, in.Visibility)
	if !ok {
		return
	}

	reply, err := r.content.CreateReply(userID, postID, utils.Sanitize(in.Content), vis)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", views.NewReplyView(reply, userID))
}

// Delete moves the caller's reply into the terminal deleted state.
func (r *ReplyController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	if err := r.content.SoftDeleteReply(id, userID); err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, nil)
}

// Upvote records the caller's upvote, displacing any prior downvote.
func (r *ReplyController) Upvote(ctx *gin.Context) {
	r.vote(ctx, store.VoteUp)
}

// Downvote records the caller's downvote, displacing any prior upvote.
func (r *ReplyController) Downvote(ctx *gin.Context) {
	r.vote(ctx, store.VoteDown)
}

func (r *ReplyController) vote(ctx *gin.Context, dir store.VoteDirection) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	reply, err := r.content.GetReply(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	if err := r.votes.Apply(reply, userID, dir); err != nil {
		respondStoreError(ctx, err)
		return
	}

	reply, err = r.content.GetReply(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewReplyView(reply, userID))
}

// Unvote withdraws the caller's vote in either direction.
func (r *ReplyController) Unvote(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	reply, err := r.content.GetReply(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	if err := r.votes.Remove(reply, userID); err != nil {
		respondStoreError(ctx, err)
		return
	}

	reply, err = r.content.GetReply(id, userID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewReplyView(reply, userID))
}
