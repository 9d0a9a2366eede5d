package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bookstore/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit caps the request body at maxSize (e.g. "1MB", "512KB").
// An unparseable size falls back to 1MB.
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	size, err := util.ParseSize(maxSize)
	if err != nil {
		size = defaultMaxBodySize
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, size)
		c.Next()
	}
}
