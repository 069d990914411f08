// internal/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/storefront-backend/internal/config"
)

// AdminRequired gates the admin area behind HTTP Basic auth. The configured
// password is stored bcrypt-hashed; the username check is constant-time so
// the two comparisons leak the same nothing.
func AdminRequired(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !adminCredentialsValid(cfg, username, password) {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func adminCredentialsValid(cfg *config.Config, username, password string) bool {
	if cfg.Admin.HashedPassword == "" {
		return false
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Admin.Username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword([]byte(cfg.Admin.HashedPassword), []byte(password)) == nil

	return usernameMatch && passwordMatch
}
