package controllers

import (
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/config"
	"github.com/campuslink/campuslink/store"
	"github.com/campuslink/campuslink/utils"
	"github.com/campuslink/campuslink/views"
)

// MediaController handles uploads and serves stored files.
type MediaController struct {
	files *store.FileStore
}

func NewMediaController(files *store.FileStore) *MediaController {
	return &MediaController{files: files}
}

// Upload stores a multipart file under a random name and returns its
// metadata. The caller attaches the returned id to a post or profile.
func (m *MediaController) Upload(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "file is required")
		return
	}

	maxBytes := int64(config.Get().MaxUploadMB) << 20
	if header.Size > maxBytes {
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41301, "file exceeds the upload size limit")
		return
	}

	src, err := header.Open()
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	defer src.Close()

	file, err := m.files.StoreUpload(src, header.Header.Get("Content-Type"))
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", views.NewFileView(file))
}

// Serve streams a stored file with its recorded content type. Quarantined
// files are indistinguishable from absent ones.
func (m *MediaController) Serve(ctx *gin.Context) {
	rel := ctx.Param("path")

	rd, file, err := m.files.Open(rel)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}
	defer rd.Close()

	if file.MimeType != "" {
		ctx.Header("Content-Type", file.MimeType)
	}
	http.ServeContent(ctx.Writer, ctx.Request, path.Base(file.Path), time.Time{}, rd)
}
