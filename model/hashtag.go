package model

import "time"

/*

Hashtag is a tag attached to feeds

Name: unique tag name
Feeds: feeds carrying this tag, "many-to-many" relation through feed_hashtags

*/
type Hashtag struct {
	Id        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Feeds     []*Feed   `gorm:"many2many:feed_hashtags;" json:"feeds,omitempty"`
}
