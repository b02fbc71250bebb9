package server

import (
	"net/http"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rinblog/rin/app_config"
	"github.com/rinblog/rin/file_store"
	"github.com/rinblog/rin/server/middlewares"
	Logger "github.com/rinblog/rin/utils/log"
	"gorm.io/gorm"
)

// Plain text bodies shared by every route group. Clients match on them.
const (
	MsgOK               = "OK"
	MsgUnauthorized     = "Unauthorized"
	MsgPermissionDenied = "Permission denied"
	MsgNotFound         = "Not found"
	MsgInvalidInput     = "Invalid input"
	MsgInternalError    = "Internal server error"
)

// Dependencies serves as dependency injection for the handlers, add any
// dependencies you require here.
type Dependencies struct {
	DB        *gorm.DB
	Tokens    *middlewares.TokenIssuer
	S3Config  file_store.S3Config
	FileStore file_store.FileStore
	// Comment events are published here.
	EventBus  message.Publisher
	Github    GithubAuthenticator
	AppConfig app_config.ServerAppConfig
	// Where the SPA lives, login redirects back to it.
	FrontendUrl string
}

// NewRouter wires every route group. Extra middlewares, such as tracing, are
// installed before the routes.
func NewRouter(deps Dependencies, extra ...gin.HandlerFunc) *gin.Engine {
	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(deps.AppConfig.CORS_ALLOW_ORIGINS) > 0 {
		corsConfig.AllowOrigins = deps.AppConfig.CORS_ALLOW_ORIGINS
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))
	router.Use(extra...)
	router.Use(middlewares.Auth(deps.DB, deps.Tokens))

	// health check
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	AddFeedRoutes(router.Group("/feed"), deps)
	AddCommentRoutes(router.Group("/comment"), deps)
	AddTagRoutes(router.Group("/tag"), deps)
	AddFriendRoutes(router.Group("/friend"), deps)
	AddStorageRoutes(router.Group("/storage"), deps)
	AddUserRoutes(router.Group("/user"), deps)

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, MsgNotFound)
	})
	return router
}

// parseId reads a positive integer path param.
func parseId(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// internalError logs err and answers 500 without leaking details.
func internalError(c *gin.Context, err error) {
	Logger.Log.WithField("path", c.FullPath()).Error(err)
	c.String(http.StatusInternalServerError, MsgInternalError)
}

// requireUid answers 401 and returns false for anonymous callers.
func requireUid(c *gin.Context) (uint, bool) {
	uid, ok := middlewares.GetUid(c)
	if !ok {
		c.String(http.StatusUnauthorized, MsgUnauthorized)
		return 0, false
	}
	return uid, true
}

// canModify is the owner-or-admin gate on mutations.
func canModify(c *gin.Context, uid uint, ownerId uint) bool {
	if middlewares.IsAdmin(c) || uid == ownerId {
		return true
	}
	c.String(http.StatusForbidden, MsgPermissionDenied)
	return false
}

// respondLoadError answers status with notFoundMsg when the row is missing,
// 500 for any other error.
func respondLoadError(c *gin.Context, err error, status int, notFoundMsg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.String(status, notFoundMsg)
		return
	}
	internalError(c, err)
}
