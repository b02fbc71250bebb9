package model

import "time"

const (
	FriendNameMaxLength  = 20
	FriendFieldMaxLength = 100
)

/*

Friend is an external site listed in the friend links directory

Name, Desc, Avatar, Url: shown in the directory. Name is at most
	FriendNameMaxLength characters, the rest FriendFieldMaxLength.
Uid: user who applied for (or, for admin, added) this link. A normal user owns
	at most one Friend row.
Accepted: 1 once approved by admin, 0 while pending
Health: result of the last health check. Empty string means healthy,
	otherwise the non-2xx status code or the request error message.

*/
type Friend struct {
	Id        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"size:20;not null" json:"name"`
	Desc      string    `gorm:"column:description;size:100;not null" json:"desc"`
	Avatar    string    `gorm:"size:100;not null" json:"avatar"`
	Url       string    `gorm:"size:100;not null" json:"url"`
	Uid       uint      `gorm:"index;not null" json:"uid"`
	Accepted  int       `gorm:"not null;default:0" json:"accepted"`
	Health    string    `gorm:"not null;default:''" json:"health"`
}
