package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrCodeRequestTooLarge answers bodies over the configured limit.
const ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"

// BodyLimit rejects declared bodies over maxBytes with 413 and caps chunked
// bodies while they are read. Paths under an exempt prefix apply their own
// limit, as the upload routes do.
func BodyLimit(maxBytes int64, exemptPrefixes ...string) gin.HandlerFunc {
	if maxBytes <= 0 {
		return passThrough
	}
	message := "Le corps de la requête dépasse " + strconv.FormatInt(maxBytes, 10) + " octets"
	return func(c *gin.Context) {
		for _, prefix := range exemptPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, message)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
