package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/rinblog/rin/model"
	"github.com/rinblog/rin/server/middlewares"
	"github.com/rinblog/rin/utils"
	"gorm.io/gorm"
)

const (
	MsgTitleRequired = "Title is required"
	MsgAliasExists   = "Alias already exists"

	FeedTypeNormal   = "normal"
	FeedTypeDraft    = "draft"
	FeedTypeUnlisted = "unlisted"

	MaxFeedPageSize   = 100
	FeedSummaryLength = 100
)

type hashtagView struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

type feedListItem struct {
	Id        uint           `json:"id"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	Hashtags  []hashtagView  `json:"hashtags"`
	User      model.UserInfo `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type feedListResponse struct {
	Size    int64          `json:"size"`
	Data    []feedListItem `json:"data"`
	HasNext bool           `json:"hasNext"`
}

type feedView struct {
	Id        uint           `json:"id"`
	Alias     *string        `json:"alias"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	Content   string         `json:"content"`
	Listed    bool           `json:"listed"`
	Draft     bool           `json:"draft"`
	Uid       uint           `json:"uid"`
	Hashtags  []hashtagView  `json:"hashtags"`
	User      model.UserInfo `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type createFeedRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Summary string   `json:"summary"`
	Alias   string   `json:"alias"`
	Draft   bool     `json:"draft"`
	Listed  *bool    `json:"listed"`
	Tags    []string `json:"tags"`
}

// Empty strings and nil pointers mean "unchanged". A non-nil Tags replaces
// the whole hashtag set, an empty list clears it.
type updateFeedRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Summary string   `json:"summary"`
	Alias   string   `json:"alias"`
	Draft   *bool    `json:"draft"`
	Listed  *bool    `json:"listed"`
	Tags    []string `json:"tags"`
}

type feedTextFields struct {
	Title   string
	Content string
	Summary string
}

func AddFeedRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.GET("", ListFeedsHandler(deps.DB, deps.AppConfig.FEED_PAGE_SIZE))
	rg.POST("", CreateFeedHandler(deps.DB))
	rg.GET("/:id", GetFeedHandler(deps.DB))
	rg.PUT("/:id", UpdateFeedHandler(deps.DB))
	rg.DELETE("/:id", DeleteFeedHandler(deps.DB))

	rg.GET("/comment/:feed", ListCommentsHandler(deps.DB))
	rg.POST("/comment/:feed", CreateCommentHandler(deps.DB, deps.EventBus))
}

func toHashtagViews(hashtags []*model.Hashtag) []hashtagView {
	views := []hashtagView{}
	for _, hashtag := range hashtags {
		views = append(views, hashtagView{Id: hashtag.Id, Name: hashtag.Name})
	}
	return views
}

func userInfoOf(user *model.User) model.UserInfo {
	if user == nil {
		return model.UserInfo{}
	}
	return user.Info()
}

func toFeedListItem(feed *model.Feed) feedListItem {
	summary := feed.Summary
	if summary == "" {
		summary = utils.TruncateRunes(feed.Content, FeedSummaryLength)
	}
	return feedListItem{
		Id:        feed.Id,
		Title:     feed.Title,
		Summary:   summary,
		Hashtags:  toHashtagViews(feed.Hashtags),
		User:      userInfoOf(feed.User),
		CreatedAt: feed.CreatedAt,
		UpdatedAt: feed.UpdatedAt,
	}
}

func toFeedView(feed *model.Feed) feedView {
	return feedView{
		Id:        feed.Id,
		Alias:     feed.Alias,
		Title:     feed.Title,
		Summary:   feed.Summary,
		Content:   feed.Content,
		Listed:    feed.Listed,
		Draft:     feed.Draft,
		Uid:       feed.Uid,
		Hashtags:  toHashtagViews(feed.Hashtags),
		User:      userInfoOf(feed.User),
		CreatedAt: feed.CreatedAt,
		UpdatedAt: feed.UpdatedAt,
	}
}

// queryInt reads a positive integer query param, fallback otherwise.
func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// findOrCreateHashtags returns the hashtags named names, creating the missing
// ones.
func findOrCreateHashtags(tx *gorm.DB, names []string) ([]*model.Hashtag, error) {
	hashtags := []*model.Hashtag{}
	for _, name := range utils.UniqueNonEmptyStrings(names) {
		hashtag := model.Hashtag{}
		if err := tx.Where(model.Hashtag{Name: name}).FirstOrCreate(&hashtag).Error; err != nil {
			return nil, errors.Wrapf(err, "fail to create hashtag %s", name)
		}
		hashtags = append(hashtags, &hashtag)
	}
	return hashtags, nil
}

// aliasTaken reports whether another feed already uses alias.
func aliasTaken(db *gorm.DB, alias string, exceptId uint) (bool, error) {
	var count int64
	err := db.Model(&model.Feed{}).Where("alias = ? AND id <> ?", alias, exceptId).Count(&count).Error
	return count > 0, err
}

// loadFeed finds a feed by numeric id, or by alias otherwise.
func loadFeed(db *gorm.DB, idOrAlias string) (*model.Feed, error) {
	var feed model.Feed
	query := db.Preload("User").Preload("Hashtags")
	if id, err := strconv.ParseUint(idOrAlias, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("alias = ?", idOrAlias)
	}
	if err := query.First(&feed).Error; err != nil {
		return nil, err
	}
	return &feed, nil
}

// ListFeedsHandler pages through feeds, newest first. Drafts and unlisted
// feeds are admin only.
func ListFeedsHandler(db *gorm.DB, pageSize int) gin.HandlerFunc {
	if pageSize <= 0 {
		pageSize = 20
	}
	return func(c *gin.Context) {
		page := queryInt(c, "page", 1)
		limit := queryInt(c, "limit", pageSize)
		if limit > MaxFeedPageSize {
			limit = MaxFeedPageSize
		}

		query := db.Model(&model.Feed{})
		switch c.DefaultQuery("type", FeedTypeNormal) {
		case FeedTypeNormal:
			query = query.Where("draft = ? AND listed = ?", false, true)
		case FeedTypeDraft:
			if !middlewares.IsAdmin(c) {
				c.String(http.StatusForbidden, MsgPermissionDenied)
				return
			}
			query = query.Where("draft = ?", true)
		case FeedTypeUnlisted:
			if !middlewares.IsAdmin(c) {
				c.String(http.StatusForbidden, MsgPermissionDenied)
				return
			}
			query = query.Where("draft = ? AND listed = ?", false, false)
		default:
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}

		var total int64
		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			internalError(c, err)
			return
		}

		var feeds []*model.Feed
		err := query.Preload("User").Preload("Hashtags").
			Order("created_at desc").
			Order("id desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&feeds).Error
		if err != nil {
			internalError(c, err)
			return
		}

		res := feedListResponse{Size: total, Data: []feedListItem{}}
		for _, feed := range feeds {
			res.Data = append(res.Data, toFeedListItem(feed))
		}
		res.HasNext = int64(page*limit) < total
		c.JSON(http.StatusOK, res)
	}
}

func GetFeedHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		feed, err := loadFeed(db, c.Param("id"))
		if err != nil {
			respondLoadError(c, err, http.StatusNotFound, MsgNotFound)
			return
		}
		uid, _ := middlewares.GetUid(c)
		if !feed.IsVisibleTo(uid, middlewares.IsAdmin(c)) {
			c.String(http.StatusForbidden, MsgPermissionDenied)
			return
		}
		c.JSON(http.StatusOK, toFeedView(feed))
	}
}

// CreateFeedHandler writes a new feed. Only admin can write.
func CreateFeedHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUid(c)
		if !ok {
			return
		}
		if !middlewares.IsAdmin(c) {
			c.String(http.StatusForbidden, MsgPermissionDenied)
			return
		}

		var req createFeedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			c.String(http.StatusBadRequest, MsgTitleRequired)
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			c.String(http.StatusBadRequest, MsgContentRequired)
			return
		}

		feed := model.Feed{
			Title:   req.Title,
			Content: req.Content,
			Summary: req.Summary,
			Draft:   req.Draft,
			Listed:  req.Listed == nil || *req.Listed,
			Uid:     uid,
		}
		if alias := strings.TrimSpace(req.Alias); alias != "" {
			taken, err := aliasTaken(db, alias, 0)
			if err != nil {
				internalError(c, err)
				return
			}
			if taken {
				c.String(http.StatusBadRequest, MsgAliasExists)
				return
			}
			feed.Alias = &alias
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			hashtags, err := findOrCreateHashtags(tx, req.Tags)
			if err != nil {
				return err
			}
			feed.Hashtags = hashtags
			return tx.Create(&feed).Error
		})
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"insertedId": feed.Id})
	}
}

// UpdateFeedHandler edits a feed, author or admin only.
func UpdateFeedHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUid(c)
		if !ok {
			return
		}

		var req updateFeedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, MsgInvalidInput)
			return
		}

		id, ok := parseId(c, "id")
		if !ok {
			c.String(http.StatusNotFound, MsgNotFound)
			return
		}
		var feed model.Feed
		if err := db.First(&feed, id).Error; err != nil {
			respondLoadError(c, err, http.StatusNotFound, MsgNotFound)
			return
		}
		if !canModify(c, uid, feed.Uid) {
			return
		}

		fields := feedTextFields{Title: req.Title, Content: req.Content, Summary: req.Summary}
		if err := copier.CopyWithOption(&feed, &fields, copier.Option{IgnoreEmpty: true}); err != nil {
			internalError(c, err)
			return
		}
		if req.Draft != nil {
			feed.Draft = *req.Draft
		}
		if req.Listed != nil {
			feed.Listed = *req.Listed
		}
		if alias := strings.TrimSpace(req.Alias); alias != "" {
			taken, err := aliasTaken(db, alias, feed.Id)
			if err != nil {
				internalError(c, err)
				return
			}
			if taken {
				c.String(http.StatusBadRequest, MsgAliasExists)
				return
			}
			feed.Alias = &alias
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&feed).Select("Title", "Content", "Summary", "Alias", "Draft", "Listed").Updates(&feed).Error
			if err != nil {
				return err
			}
			if req.Tags == nil {
				return nil
			}
			if len(req.Tags) == 0 {
				return tx.Model(&feed).Association("Hashtags").Clear()
			}
			hashtags, err := findOrCreateHashtags(tx, req.Tags)
			if err != nil {
				return err
			}
			return tx.Model(&feed).Association("Hashtags").Replace(hashtags)
		})
		if err != nil {
			internalError(c, err)
			return
		}
		c.String(http.StatusOK, MsgOK)
	}
}

// DeleteFeedHandler removes a feed with its comments and hashtag links.
func DeleteFeedHandler(db *gorm.DB) gin.HandlerFunc {
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
		var feed model.Feed
		if err := db.First(&feed, id).Error; err != nil {
			respondLoadError(c, err, http.StatusNotFound, MsgNotFound)
			return
		}
		if !canModify(c, uid, feed.Uid) {
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("feed_id = ?", feed.Id).Delete(&model.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&feed).Association("Hashtags").Clear(); err != nil {
				return err
			}
			return tx.Delete(&model.Feed{}, feed.Id).Error
		})
		if err != nil {
			internalError(c, err)
			return
		}
		c.String(http.StatusOK, MsgOK)
	}
}
