package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rinblog/rin/model"
	Logger "github.com/rinblog/rin/utils/log"
	"gorm.io/gorm"
)

const (
	// gin context keys set by Auth
	UidKey   = "uid"
	AdminKey = "admin"
	UserKey  = "user"
)

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

// Auth middleware looks for a jwt in the "Authorization: Bearer" header, or
// the "token" query param. A valid token whose user still exists sets uid,
// admin and user on the context. It never aborts: anonymous requests pass
// through and each handler decides whether it needs a user.
func Auth(db *gorm.DB, tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		uid, err := tokens.Validate(token)
		if err != nil {
			Logger.Log.Debug("invalid token: ", err)
			c.Next()
			return
		}

		var user model.User
		if err := db.First(&user, uid).Error; err != nil {
			Logger.Log.WithField("uid", uid).Debug("token of unknown user: ", err)
			c.Next()
			return
		}

		c.Set(UidKey, user.Id)
		c.Set(AdminKey, user.IsAdmin())
		c.Set(UserKey, &user)
		c.Next()
	}
}

// GetUid returns the id of the authenticated user, false when anonymous.
func GetUid(c *gin.Context) (uint, bool) {
	uid, ok := c.Get(UidKey)
	if !ok {
		return 0, false
	}
	id, ok := uid.(uint)
	return id, ok && id != 0
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(AdminKey)
}

// GetUser returns the authenticated user loaded by Auth.
func GetUser(c *gin.Context) (*model.User, bool) {
	user, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}
