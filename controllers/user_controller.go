package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/campuslink/middleware"
	"github.com/campuslink/campuslink/models"
	"github.com/campuslink/campuslink/store"
	"github.com/campuslink/campuslink/utils"
	"github.com/campuslink/campuslink/views"
)

// UserController handles profile reads and updates.
type UserController struct {
	db    *gorm.DB
	files *store.FileStore
}

func NewUserController(db *gorm.DB, files *store.FileStore) *UserController {
	return &UserController{db: db, files: files}
}

// GetUser returns a profile. Unverified designations are filtered out for
// everyone but the owner.
func (u *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(ctx)

	var user models.User
	err := u.db.Preload("College").Preload("Picture").Preload("Designations").
		First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewUserView(&user, viewerID))
}

type profileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UpdateProfile changes the caller's own name fields. Fields left out of the
// request body stay untouched.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var in profileInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if len(updates) > 0 {
		if err := u.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			respondStoreError(ctx, err)
			return
		}
	}

	var user models.User
	if err := u.db.Preload("College").Preload("Picture").Preload("Designations").
		First(&user, userID).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewUserView(&user, userID))
}

type pictureInput struct {
	FileID uint `json:"file_id" binding:"required"`
}

// UpdatePicture points the caller's profile picture at an uploaded file.
func (u *UserController) UpdatePicture(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var in pictureInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "file_id is required")
		return
	}

	file, err := u.files.GetFile(in.FileID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	if strings.HasPrefix(file.Path, models.QuarantinePrefix) {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	if !strings.HasPrefix(file.MimeType, "image/") {
		utils.Error(ctx, http.StatusBadRequest, 40022, "profile picture must be an image")
		return
	}

	if err := u.db.Model(&models.User{}).Where("id = ?", userID).
		Update("picture_id", file.ID).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}

	var user models.User
	if err := u.db.Preload("College").Preload("Picture").Preload("Designations").
		First(&user, userID).Error; err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Success(ctx, views.NewUserView(&user, userID))
}

type designationInput struct {
	Name string `json:"name" binding:"required,max=64"`
}

// AddDesignation records a self-declared role on the caller's profile. New
// designations start unverified and show only to their owner.
func (u *UserController) AddDesignation(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return
	}

	var in designationInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "name is required")
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "name is required")
		return
	}

	d := models.Designation{Name: name}
	err := u.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&d).Error; err != nil {
			return err
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		return tx.Model(&user).Association("Designations").Append(&d)
	})
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success",
		views.DesignationView{ID: d.ID, Name: d.Name, Verified: d.Verified})
}

// GetDesignations lists a user's designations, verified-only unless the
// caller is looking at their own profile.
func (u *UserController) GetDesignations(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(ctx)

	var user models.User
	err := u.db.Preload("Designations").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	out := []views.DesignationView{}
	for _, d := range user.Designations {
		if !d.Verified && viewerID != user.ID {
			continue
		}
		out = append(out, views.DesignationView{ID: d.ID, Name: d.Name, Verified: d.Verified})
	}
	utils.Success(ctx, out)
}
