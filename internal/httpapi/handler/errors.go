package handler

import (
	"errors"
	"net/http"
	"strconv"

	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

// handleServiceError translates service sentinels into HTTP status codes:
// validation problems are 400, ownership problems 403, missing resources 404
// and the protect-on-delete violation 409. Anything unrecognized is a 500.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrReservedUsername),
		errors.Is(err, service.ErrInvalidYear),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrUnknownGenre),
		errors.Is(err, service.ErrReviewExists),
		errors.Is(err, service.ErrBadConfirmationCode),
		errors.Is(err, service.ErrNameInUse),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrCategorySlugUsed),
		errors.Is(err, service.ErrGenreSlugUsed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrNotReviewOwner),
		errors.Is(err, service.ErrNotCommentOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrTitleNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrGenreNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrCategoryInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// pagination reads page/page_size query parameters with the usual clamping.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// caller pulls the authenticated identity that AuthMiddleware stored.
func caller(c *gin.Context) (userID, role string, ok bool) {
	idVal, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", "", false
	}
	roleVal, _ := c.Get("role")
	userID, _ = idVal.(string)
	role, _ = roleVal.(string)
	return userID, role, true
}
