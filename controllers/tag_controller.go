package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/campuslink/middleware"
	"github.com/campuslink/campuslink/models"
	"github.com/campuslink/campuslink/utils"
	"github.com/campuslink/campuslink/views"
)

const (
	tagCachePrefix = "cache:tags:"
	tagCacheTTL    = 10 * time.Minute
	tagSearchLimit = 10
)

// TagController handles tag listing, search and subscriptions.
type TagController struct {
	db *gorm.DB
}

func NewTagController(db *gorm.DB) *TagController {
	return &TagController{db: db}
}

// List returns every tag, cached since the tag set changes rarely.
func (t *TagController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(tagCachePrefix + "all"); ok {
		var cached []views.TagView
		if json.Unmarshal(b, &cached) == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var tags []models.Tag
	if err := t.db.Order("name").Find(&tags).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}

	out := make([]views.TagView, 0, len(tags))
	for _, tag := range tags {
		out = append(out, views.TagView{ID: tag.ID, Name: tag.Name})
	}
	utils.CacheSetJSON(tagCachePrefix+"all", out, tagCacheTTL)
	utils.Success(ctx, out)
}

type tagInput struct {
	Name string `json:"name" binding:"required,max=16"`
}

// Create adds a new tag. Names are short, unique and lowercased so that
// search and the college feed match case-insensitively.
func (t *TagController) Create(ctx *gin.Context) {
	var in tagInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "name is required and at most 16 characters")
		return
	}
	name := strings.ToLower(strings.TrimSpace(in.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40060, "name is required and at most 16 characters")
		return
	}

	var existing models.Tag
	err := t.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		utils.Error(ctx, http.StatusConflict, 40960, "tag already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondStoreError(ctx, err)
		return
	}

	tag := models.Tag{Name: name}
	if err := t.db.Create(&tag).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(tagCachePrefix)

	utils.Respond(ctx, http.StatusCreated, 0, "success", views.TagView{ID: tag.ID, Name: tag.Name})
}

// Search returns up to ten tags whose name contains the query substring.
func (t *TagController) Search(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		utils.Success(ctx, []views.TagView{})
		return
	}

	var tags []models.Tag
	err := t.db.Where("name LIKE ?", "%"+escapeLike(q)+"%").
		Order("name").
		Limit(tagSearchLimit).
		Find(&tags).Error
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	out := make([]views.TagView, 0, len(tags))
	for _, tag := range tags {
		out = append(out, views.TagView{ID: tag.ID, Name: tag.Name})
	}
	utils.Success(ctx, out)
}

// Subscribe adds the caller to a tag's subscriber set. Idempotent.
func (t *TagController) Subscribe(ctx *gin.Context) {
	t.setSubscription(ctx, true)
}

// Unsubscribe removes the caller from a tag's subscriber set. Idempotent.
func (t *TagController) Unsubscribe(ctx *gin.Context) {
	t.setSubscription(ctx, false)
}

func (t *TagController) setSubscription(ctx *gin.Context, subscribe bool) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var tag models.Tag
	if err := t.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "not found")
			return
		}
		respondStoreError(ctx, err)
		return
	}

	assoc := t.db.Model(&tag).Association("Subscribers")
	var err error
	if subscribe {
		err = assoc.Append(&models.User{ID: userID})
	} else {
		err = assoc.Delete(&models.User{ID: userID})
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.TagView{ID: tag.ID, Name: tag.Name})
}

// Subscriptions lists the tags the caller subscribed to.
func (t *TagController) Subscriptions(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var tags []models.Tag
	err := t.db.
		Joins("JOIN tag_subscribers ts ON ts.tag_id = tags.id").
		Where("ts.user_id = ?", userID).
		Order("name").
		Find(&tags).Error
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	out := make([]views.TagView, 0, len(tags))
	for _, tag := range tags {
		out = append(out, views.TagView{ID: tag.ID, Name: tag.Name})
	}
	utils.Success(ctx, out)
}
