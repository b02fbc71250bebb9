package utils

import (
	"fmt"
	"testing"

	"github.com/rinblog/rin/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// create user with name and permission, do sanity checks and returns it
func TestCreateUserAndValidate(t *testing.T, name string, permission int, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		Username:   name,
		Openid:     fmt.Sprintf("openid-%s", name),
		Avatar:     fmt.Sprintf("https://avatars.example.com/%s.png", name),
		Permission: permission,
	}
	require.NoError(t, db.Create(user).Error)
	require.NotZero(t, user.Id)
	return user
}

// create a published feed owned by uid, do sanity checks and returns it
func TestCreateFeedAndValidate(t *testing.T, uid uint, title string, tags []string, db *gorm.DB) *model.Feed {
	t.Helper()
	hashtags := []*model.Hashtag{}
	for _, name := range tags {
		hashtag := model.Hashtag{Name: name}
		require.NoError(t, db.Where(model.Hashtag{Name: name}).FirstOrCreate(&hashtag).Error)
		hashtags = append(hashtags, &hashtag)
	}
	feed := &model.Feed{
		Title:    title,
		Content:  "content of " + title,
		Listed:   true,
		Uid:      uid,
		Hashtags: hashtags,
	}
	require.NoError(t, db.Create(feed).Error)
	require.NotZero(t, feed.Id)
	return feed
}

// create a friend row owned by uid, do sanity checks and returns it
func TestCreateFriendAndValidate(t *testing.T, uid uint, name string, url string, accepted int, db *gorm.DB) *model.Friend {
	t.Helper()
	friend := &model.Friend{
		Name:     name,
		Desc:     "desc of " + name,
		Avatar:   "https://avatars.example.com/friend.png",
		Url:      url,
		Uid:      uid,
		Accepted: accepted,
	}
	require.NoError(t, db.Create(friend).Error)
	require.NotZero(t, friend.Id)
	return friend
}
