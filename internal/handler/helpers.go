package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/response"
)

// paramID parses a numeric path parameter, failing the request on a bad
// value.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// querySearch returns a pointer to the non-empty search query, or nil.
func querySearch(c *gin.Context) *string {
	if s := c.Query("search"); s != "" {
		return &s
	}
	return nil
}
