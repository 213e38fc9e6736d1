package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/store"
	"github.com/campuslink/campuslink/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondStoreError maps store errors to the response envelope. Unknown
// errors are logged and reported as a generic 500.
func respondStoreError(ctx *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
	case errors.Is(err, store.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "forbidden")
	case errors.As(err, &verr):
		utils.Error(ctx, http.StatusBadRequest, 40001, verr.Error())
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("store error at %s: %v", ctx.FullPath(), err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50001, "internal error")
	}
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(ctx *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(ctx.DefaultQuery("limit", "")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(ctx.DefaultQuery("offset", "")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters in user input so a query like
// "%" matches literally instead of everything.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// pagedData wraps list results with total count for clients to page through.
func pagedData(items interface{}, total int64, limit, offset int) gin.H {
	return gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}
}
