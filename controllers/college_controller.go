package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/campuslink/models"
	"github.com/campuslink/campuslink/utils"
	"github.com/campuslink/campuslink/views"
)

const (
	collegeCachePrefix = "cache:colleges:"
	collegeCacheTTL    = time.Hour
)

// CollegeController serves the college directory. Colleges are maintained
// out of band, so reads are cached aggressively.
type CollegeController struct {
	db *gorm.DB
}

func NewCollegeController(db *gorm.DB) *CollegeController {
	return &CollegeController{db: db}
}

// List returns every college with logo, cover and tags.
func (c *CollegeController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(collegeCachePrefix + "all"); ok {
		var cached []views.CollegeView
		if json.Unmarshal(b, &cached) == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var colleges []models.College
	err := c.db.Preload("Logo").Preload("Cover").Preload("Tags").
		Order("name").Find(&colleges).Error
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	out := views.NewCollegeViews(colleges)
	utils.CacheSetJSON(collegeCachePrefix+"all", out, collegeCacheTTL)
	utils.Success(ctx, out)
}

// Get returns a single college by id.
func (c *CollegeController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	key := fmt.Sprintf("%s%d", collegeCachePrefix, id)
	if b, ok := utils.CacheGetBytes(key); ok {
		var cached views.CollegeView
		if json.Unmarshal(b, &cached) == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var college models.College
	err := c.db.Preload("Logo").Preload("Cover").Preload("Tags").
		First(&college, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	out := views.NewCollegeView(&college)
	utils.CacheSetJSON(key, out, collegeCacheTTL)
	utils.Success(ctx, out)
}
