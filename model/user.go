package model

import "time"

const (
	PermissionNormal = 0
	PermissionAdmin  = 1
)

/*

User is an account created through GitHub login

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time when entity is updated

Username: display name, GitHub login on first sign in
Openid: GitHub numeric id, unique per user. Never leaves the server.
Avatar: avatar url
Permission: PermissionAdmin for the blog owner, PermissionNormal otherwise.
	The first user ever created becomes admin.
*/
type User struct {
	Id         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Username   string    `gorm:"not null" json:"username"`
	Openid     string    `gorm:"uniqueIndex;not null" json:"-"`
	Avatar     string    `json:"avatar"`
	Permission int       `gorm:"not null;default:0" json:"permission"`
}

func (u *User) IsAdmin() bool {
	return u.Permission == PermissionAdmin
}

// UserInfo is the public projection of a User attached to feeds and comments.
type UserInfo struct {
	Id         uint   `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	Permission int    `json:"permission"`
}

func (u *User) Info() UserInfo {
	return UserInfo{
		Id:         u.Id,
		Username:   u.Username,
		Avatar:     u.Avatar,
		Permission: u.Permission,
	}
}
