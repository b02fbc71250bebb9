package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/rinblog/rin/engine"
	"github.com/rinblog/rin/model"
	Logger "github.com/rinblog/rin/utils/log"
	"gorm.io/gorm"
)

const (
	MsgContentRequired = "Content is required"
	MsgUserNotFound    = "User not found"
	MsgFeedNotFound    = "Feed not found"
)

type commentView struct {
	Id        uint           `json:"id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	User      model.UserInfo `json:"user"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func AddCommentRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.DELETE("/:id", DeleteCommentHandler(deps.DB))
}

// ListCommentsHandler returns the comments of a feed, newest first. An
// unparsable feed id has no comments.
func ListCommentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		views := []commentView{}
		feedId, err := strconv.ParseUint(c.Param("feed"), 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, views)
			return
		}

		var comments []model.Comment
		err = db.Preload("User").
			Where("feed_id = ?", feedId).
			Order("created_at desc").
			Order("id desc").
			Find(&comments).Error
		if err != nil {
			internalError(c, err)
			return
		}

		for _, comment := range comments {
			view := commentView{
				Id:        comment.Id,
				Content:   comment.Content,
				CreatedAt: comment.CreatedAt,
				UpdatedAt: comment.UpdatedAt,
			}
			if comment.User != nil {
				view.User = comment.User.Info()
			}
			views = append(views, view)
		}
		c.JSON(http.StatusOK, views)
	}
}

// CreateCommentHandler stores a comment and publishes a comment event for
// the notifier.
func CreateCommentHandler(db *gorm.DB, bus message.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUid(c)
		if !ok {
			return
		}

		var req createCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			c.String(http.StatusBadRequest, MsgContentRequired)
			return
		}

		var user model.User
		if err := db.First(&user, uid).Error; err != nil {
			respondLoadError(c, err, http.StatusBadRequest, MsgUserNotFound)
			return
		}

		feedId, err := strconv.ParseUint(c.Param("feed"), 10, 64)
		if err != nil {
			c.String(http.StatusBadRequest, MsgFeedNotFound)
			return
		}
		var feed model.Feed
		if err := db.First(&feed, feedId).Error; err != nil {
			respondLoadError(c, err, http.StatusBadRequest, MsgFeedNotFound)
			return
		}

		comment := model.Comment{
			FeedId:  feed.Id,
			UserId:  user.Id,
			Content: req.Content,
		}
		if err := db.Create(&comment).Error; err != nil {
			internalError(c, err)
			return
		}

		if bus != nil {
			err := engine.PublishCommentCreated(bus, engine.CommentCreatedEvent{
				FeedId:    feed.Id,
				FeedTitle: feed.Title,
				Username:  user.Username,
				Content:   comment.Content,
			})
			if err != nil {
				Logger.Log.Error("fail to publish comment event: ", err)
			}
		}

		c.String(http.StatusOK, MsgOK)
	}
}

// DeleteCommentHandler lets the author or admin remove a comment.
func DeleteCommentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUid(c)
		if !ok {
			return
		}

		id, ok := parseId(c, "id")
		if !ok {
			c.String(http.StatusNotFound, MsgNotFound)
			return
		}
		var comment model.Comment
		if err := db.First(&comment, id).Error; err != nil {
			respondLoadError(c, err, http.StatusNotFound, MsgNotFound)
			return
		}
		if !canModify(c, uid, comment.UserId) {
			return
		}

		if err := db.Delete(&model.Comment{}, comment.Id).Error; err != nil {
			internalError(c, err)
			return
		}
		c.String(http.StatusOK, MsgOK)
	}
}
