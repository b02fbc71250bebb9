package model

import (
	"time"
)

/*

Feed is a blog post

Id: primary key, use to identify a feed
CreatedAt: time when entity is created
UpdatedAt: time when entity is updated

Alias: optional human readable id, can replace Id in urls. Unique when set.
Title: post title
Summary: optional summary shown in listings
Content: markdown body
Listed: false hides the feed from the default listing while keeping it reachable by url
Draft: drafts are only visible to admin and the author
Uid:
User: author, "belongs-to" relation
Hashtags: tags on this feed, "many-to-many" relation

*/
type Feed struct {
	Id        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Alias     *string    `gorm:"uniqueIndex" json:"alias"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Content   string     `gorm:"type:text" json:"content"`
	Listed    bool       `json:"listed"`
	Draft     bool       `json:"draft"`
	Uid       uint       `gorm:"index;not null" json:"uid"`
	User      *User      `gorm:"foreignKey:Uid;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Hashtags  []*Hashtag `gorm:"many2many:feed_hashtags;" json:"hashtags"`
}

// IsVisibleTo reports whether a draft check passes for the given caller.
func (f *Feed) IsVisibleTo(uid uint, admin bool) bool {
	return !f.Draft || admin || (uid != 0 && f.Uid == uid)
}
