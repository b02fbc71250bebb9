package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rinblog/rin/model"
	"github.com/rinblog/rin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGithubLoginRedirect(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/user/github", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)

	var state string
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == OAuthStateCookie {
			state = cookie.Value
		}
	}
	require.NotEmpty(t, state)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state, location.Query().Get("state"))
}

func (s *testServer) callback(query string, cookieState string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/user/github/callback?"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: OAuthStateCookie, Value: cookieState})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestGithubCallback(t *testing.T) {
	s := newTestServer(t)
	s.github.profile = &GithubProfile{Id: 1234, Login: "octocat", AvatarUrl: "https://avatars.example.com/octocat.png"}

	t.Run("state mismatch", func(t *testing.T) {
		for _, cookie := range []string{"", "other"} {
			w := s.callback("code=abc&state=expected", cookie)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, MsgInvalidState, w.Body.String())
		}
		assert.Empty(t, s.github.codes)
	})

	t.Run("github error", func(t *testing.T) {
		s.github.err = errors.New("bad code")
		defer func() { s.github.err = nil }()
		w := s.callback("code=abc&state=st", "st")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("logs in", func(t *testing.T) {
		w := s.callback("code=abc&state=st", "st")
		require.Equal(t, http.StatusFound, w.Code, w.Body.String())

		location := w.Header().Get("Location")
		prefix := testFrontendUrl + "/callback?token="
		require.True(t, strings.HasPrefix(location, prefix), location)
		token, err := url.QueryUnescape(strings.TrimPrefix(location, prefix))
		require.NoError(t, err)

		uid, err := s.tokens.Validate(token)
		require.NoError(t, err)
		var user model.User
		require.NoError(t, s.db.First(&user, uid).Error)
		assert.Equal(t, "octocat", user.Username)
		assert.Equal(t, "1234", user.Openid)
		// admin already exists
		assert.False(t, user.IsAdmin())
		assert.Equal(t, "abc", s.github.codes[len(s.github.codes)-1])
	})
}

func TestUpsertGithubUser(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	owner, err := upsertGithubUser(db, &GithubProfile{Id: 1, Login: "owner", AvatarUrl: "a"})
	require.NoError(t, err)
	assert.True(t, owner.IsAdmin())

	guest, err := upsertGithubUser(db, &GithubProfile{Id: 2, Login: "guest"})
	require.NoError(t, err)
	assert.False(t, guest.IsAdmin())

	again, err := upsertGithubUser(db, &GithubProfile{Id: 1, Login: "renamed", AvatarUrl: "b"})
	require.NoError(t, err)
	assert.Equal(t, owner.Id, again.Id)
	assert.True(t, again.IsAdmin())
	assert.Equal(t, "owner", again.Username)
	assert.Equal(t, "b", again.Avatar)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/user/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgUnauthorized, w.Body.String())

	var info model.UserInfo
	decode(t, s.do(http.MethodGet, "/user/profile", nil, s.admin), &info)
	assert.Equal(t, model.UserInfo{
		Id:         s.admin.Id,
		Username:   "admin",
		Avatar:     s.admin.Avatar,
		Permission: model.PermissionAdmin,
	}, info)
}
