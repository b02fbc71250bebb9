package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rinblog/rin/model"
	"gorm.io/gorm"
)

type hashtagCount struct {
	Id    uint   `json:"id"`
	Name  string `json:"name"`
	Feeds int64  `json:"feeds"`
}

type hashtagDetail struct {
	Id    uint           `json:"id"`
	Name  string         `json:"name"`
	Feeds []feedListItem `json:"feeds"`
}

func AddTagRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.GET("", ListTagsHandler(deps.DB))
	rg.GET("/:name", GetTagHandler(deps.DB))
}

// ListTagsHandler lists every hashtag with the number of feeds carrying it.
func ListTagsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags := []hashtagCount{}
		err := db.Model(&model.Hashtag{}).
			Select("hashtags.id, hashtags.name, COUNT(feed_hashtags.feed_id) AS feeds").
			Joins("LEFT JOIN feed_hashtags ON feed_hashtags.hashtag_id = hashtags.id").
			Group("hashtags.id, hashtags.name").
			Order("hashtags.name").
			Scan(&tags).Error
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}

// GetTagHandler returns a hashtag with its public feeds.
func GetTagHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var hashtag model.Hashtag
		err := db.Where("name = ?", c.Param("name")).
			Preload("Feeds", func(tx *gorm.DB) *gorm.DB {
				return tx.Where("draft = ? AND listed = ?", false, true).Order("created_at desc")
			}).
			Preload("Feeds.User").
			Preload("Feeds.Hashtags").
			First(&hashtag).Error
		if err != nil {
			respondLoadError(c, err, http.StatusNotFound, MsgNotFound)
			return
		}

		res := hashtagDetail{Id: hashtag.Id, Name: hashtag.Name, Feeds: []feedListItem{}}
		for _, feed := range hashtag.Feeds {
			res.Feeds = append(res.Feeds, toFeedListItem(feed))
		}
		c.JSON(http.StatusOK, res)
	}
}
