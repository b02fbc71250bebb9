package model

import "time"

/*

Comment is a reader comment on a feed

FeedId:
Feed: commented feed, "belongs-to" relation
UserId:
User: author, "belongs-to" relation
Content: plain text, never empty

*/
type Comment struct {
	Id        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	FeedId    uint      `gorm:"index;not null" json:"-"`
	Feed      *Feed     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserId    uint      `gorm:"index;not null" json:"-"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
}
