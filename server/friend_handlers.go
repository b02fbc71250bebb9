package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rinblog/rin/model"
	"github.com/rinblog/rin/server/middlewares"
	"github.com/rinblog/rin/utils"
	"gorm.io/gorm"
)

const (
	MsgAlreadySent = "Already sent"
)

type friendListResponse struct {
	FriendList []model.Friend `json:"friend_list"`
	// The caller's own application, nil for anonymous callers.
	ApplyList *model.Friend `json:"apply_list"`
}

type createFriendRequest struct {
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	Avatar string `json:"avatar"`
	Url    string `json:"url"`
}

// Empty strings mean "unchanged".
type friendFields struct {
	Name   string
	Desc   string
	Avatar string
	Url    string
}

type updateFriendRequest struct {
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	Avatar   string `json:"avatar"`
	Url      string `json:"url"`
	Accepted *int   `json:"accepted"`
}

func AddFriendRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.GET("", ListFriendsHandler(deps.DB))
	rg.POST("", CreateFriendHandler(deps.DB))
	rg.PUT("/:id", UpdateFriendHandler(deps.DB))
	rg.DELETE("/:id", DeleteFriendHandler(deps.DB))
}

func exceedsFriendLimits(f friendFields) bool {
	return utils.CharLength(f.Name) > model.FriendNameMaxLength ||
		utils.CharLength(f.Desc) > model.FriendFieldMaxLength ||
		utils.CharLength(f.Avatar) > model.FriendFieldMaxLength ||
		utils.CharLength(f.Url) > model.FriendFieldMaxLength
}

func hasEmptyFriendField(f friendFields) bool {
	return f.Name == "" || f.Desc == "" || f.Avatar == "" || f.Url == ""
}

// ListFriendsHandler returns accepted friends, or every friend for admin,
// together with the caller's own row.
func ListFriendsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("id")
		if !middlewares.IsAdmin(c) {
			query = query.Where("accepted = ?", 1)
		}
		res := friendListResponse{FriendList: []model.Friend{}}
		if err := query.Find(&res.FriendList).Error; err != nil {
			internalError(c, err)
			return
		}

		if uid, ok := middlewares.GetUid(c); ok {
			var own []model.Friend
			if err := db.Where("uid = ?", uid).Order("id").Limit(1).Find(&own).Error; err != nil {
				internalError(c, err)
				return
			}
			if len(own) > 0 {
				res.ApplyList = &own[0]
			}
		}
		c.JSON(http.StatusOK, res)
	}
}

// CreateFriendHandler adds a friend link. Admin links are accepted right
// away, a normal user may only have one pending or accepted application.
// Field validation happens before the auth check.
func CreateFriendHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createFriendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}
		fields := friendFields(req)
		if exceedsFriendLimits(fields) || hasEmptyFriendField(fields) {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}

		uid, ok := requireUid(c)
		if !ok {
			return
		}
		admin := middlewares.IsAdmin(c)
		if !admin {
			var count int64
			if err := db.Model(&model.Friend{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
				internalError(c, err)
				return
			}
			if count > 0 {
				c.String(http.StatusBadRequest, MsgAlreadySent)
				return
			}
		}

		accepted := 0
		if admin {
			accepted = 1
		}
		friend := model.Friend{
			Name:     req.Name,
			Desc:     req.Desc,
			Avatar:   req.Avatar,
			Url:      req.Url,
			Uid:      uid,
			Accepted: accepted,
		}
		if err := db.Create(&friend).Error; err != nil {
			internalError(c, err)
			return
		}
		c.String(http.StatusOK, MsgOK)
	}
}

// UpdateFriendHandler edits a friend link. Only admin can set accepted, an
// edit by the owner sends the link back to review.
func UpdateFriendHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUid(c)
		if !ok {
			return
		}

		var req updateFriendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}
		fields := friendFields{Name: req.Name, Desc: req.Desc, Avatar: req.Avatar, Url: req.Url}
		if exceedsFriendLimits(fields) {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}

		id, ok := parseId(c, "id")
		if !ok {
			c.String(http.StatusNotFound, MsgNotFound)
			return
		}
		var friend model.Friend
		if err := db.First(&friend, id).Error; err != nil {
			respondLoadError(c, err, http.StatusNotFound, MsgNotFound)
			return
		}
		if !canModify(c, uid, friend.Uid) {
			return
		}

		if err := copier.CopyWithOption(&friend, &fields, copier.Option{IgnoreEmpty: true}); err != nil {
			internalError(c, err)
			return
		}
		if !middlewares.IsAdmin(c) {
			friend.Accepted = 0
		} else if req.Accepted != nil {
			friend.Accepted = *req.Accepted
		}

		err := db.Model(&friend).Select("Name", "Desc", "Avatar", "Url", "Accepted").Updates(&friend).Error
		if err != nil {
			internalError(c, err)
			return
		}
		c.String(http.StatusOK, MsgOK)
	}
}

func DeleteFriendHandler(db *gorm.DB) gin.HandlerFunc {
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
		var friend model.Friend
		if err := db.First(&friend, id).Error; err != nil {
			respondLoadError(c, err, http.StatusNotFound, MsgNotFound)
			return
		}
		if !canModify(c, uid, friend.Uid) {
			return
		}

		if err := db.Delete(&model.Friend{}, friend.Id).Error; err != nil {
			internalError(c, err)
			return
		}
		c.String(http.StatusOK, MsgOK)
	}
}
