package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rinblog/rin/model"
	"github.com/rinblog/rin/server/middlewares"
	Logger "github.com/rinblog/rin/utils/log"
	"gorm.io/gorm"
)

const (
	MsgInvalidState  = "Invalid state"
	MsgLoginDisabled = "Login is not configured"

	OAuthStateCookie       = "oauth_state"
	oauthStateCookieMaxAge = 600
)

func AddUserRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.GET("/github", GithubLoginHandler(deps.Github))
	rg.GET("/github/callback", GithubCallbackHandler(deps.DB, deps.Github, deps.Tokens, deps.FrontendUrl))
	rg.GET("/profile", ProfileHandler())
}

// GithubLoginHandler redirects to the GitHub authorize page. The state is
// kept in a short lived cookie and checked on callback.
func GithubLoginHandler(auth GithubAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			c.String(http.StatusInternalServerError, MsgLoginDisabled)
			return
		}
		state := uuid.NewString()
		c.SetCookie(OAuthStateCookie, state, oauthStateCookieMaxAge, "/", "", false, true)
		c.Redirect(http.StatusFound, auth.AuthCodeURL(state))
	}
}

func GithubCallbackHandler(db *gorm.DB, auth GithubAuthenticator, tokens *middlewares.TokenIssuer, frontendUrl string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			c.String(http.StatusInternalServerError, MsgLoginDisabled)
			return
		}
		state, err := c.Cookie(OAuthStateCookie)
		if err != nil || state == "" || state != c.Query("state") {
			c.String(http.StatusBadRequest, MsgInvalidState)
			return
		}
		c.SetCookie(OAuthStateCookie, "", -1, "/", "", false, true)

		profile, err := auth.Authenticate(c.Request.Context(), c.Query("code"))
		if err != nil {
			Logger.Log.Warn("github login failed: ", err)
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}

		user, err := upsertGithubUser(db, profile)
		if err != nil {
			internalError(c, err)
			return
		}
		token, err := tokens.Issue(user.Id)
		if err != nil {
			internalError(c, err)
			return
		}
		Logger.Log.WithField("uid", user.Id).Info("user logged in with github")
		c.Redirect(http.StatusFound, strings.TrimSuffix(frontendUrl, "/")+"/callback?token="+url.QueryEscape(token))
	}
}

// upsertGithubUser finds the user by GitHub id or creates one. The first
// user ever created is admin.
func upsertGithubUser(db *gorm.DB, profile *GithubProfile) (*model.User, error) {
	var user model.User
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("openid = ?", profile.Openid()).First(&user).Error
		if err == nil {
			if profile.AvatarUrl == "" || profile.AvatarUrl == user.Avatar {
				return nil
			}
			if err := tx.Model(&user).Update("avatar", profile.AvatarUrl).Error; err != nil {
				return err
			}
			user.Avatar = profile.AvatarUrl
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var count int64
		if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
			return err
		}
		user = model.User{
			Username:   profile.Login,
			Openid:     profile.Openid(),
			Avatar:     profile.AvatarUrl,
			Permission: model.PermissionNormal,
		}
		if count == 0 {
			user.Permission = model.PermissionAdmin
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to upsert github user")
	}
	return &user, nil
}

func ProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middlewares.GetUser(c)
		if !ok {
			c.String(http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		c.JSON(http.StatusOK, user.Info())
	}
}
