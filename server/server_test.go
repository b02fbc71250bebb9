package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/rinblog/rin/app_config"
	"github.com/rinblog/rin/file_store"
	"github.com/rinblog/rin/model"
	"github.com/rinblog/rin/server/middlewares"
	"github.com/rinblog/rin/utils"
	"github.com/rinblog/rin/utils/dotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testFrontendUrl = "https://blog.example.com"

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeGithub struct {
	profile *GithubProfile
	err     error
	codes   []string
}

func (f *fakeGithub) AuthCodeURL(state string) string {
	return "https://github.example.com/login/oauth/authorize?state=" + state
}

func (f *fakeGithub) Authenticate(ctx context.Context, code string) (*GithubProfile, error) {
	f.codes = append(f.codes, code)
	return f.profile, f.err
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *middlewares.TokenIssuer
	store  *file_store.FakeFileStore
	bus    *gochannel.GoChannel
	github *fakeGithub

	admin  *model.User
	reader *model.User
	other  *model.User
}

func testS3Config() file_store.S3Config {
	return file_store.S3Config{
		Endpoint:        "https://s3.example.com",
		Bucket:          "blog",
		Folder:          "uploads",
		AccessKeyId:     "key-id",
		SecretAccessKey: "secret",
	}
}

func newTestServer(t *testing.T) *testServer {
	db, _ := utils.CreateTempDB(t)
	tokens, err := middlewares.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	bus := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { bus.Close() })

	s := &testServer{
		t:      t,
		db:     db,
		tokens: tokens,
		store:  &file_store.FakeFileStore{Host: "https://cdn.example.com"},
		bus:    bus,
		github: &fakeGithub{},
	}
	s.admin = utils.TestCreateUserAndValidate(t, "admin", model.PermissionAdmin, db)
	s.reader = utils.TestCreateUserAndValidate(t, "reader", model.PermissionNormal, db)
	s.other = utils.TestCreateUserAndValidate(t, "other", model.PermissionNormal, db)

	config := app_config.Default()
	config.FEED_PAGE_SIZE = 2
	s.router = NewRouter(Dependencies{
		DB:          db,
		Tokens:      tokens,
		S3Config:    testS3Config(),
		FileStore:   s.store,
		EventBus:    bus,
		Github:      s.github,
		AppConfig:   config,
		FrontendUrl: testFrontendUrl,
	})
	return s
}

func (s *testServer) tokenOf(user *model.User) string {
	token, err := s.tokens.Issue(user.Id)
	require.NoError(s.t, err)
	return token
}

// do sends a request as user, anonymous when user is nil. body is encoded as
// json unless it's already a reader.
func (s *testServer) do(method, path string, body interface{}, user *model.User) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+s.tokenOf(user))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestPingAndNoRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/ping", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())

	w = s.do(http.MethodGet, "/nowhere", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, MsgNotFound, w.Body.String())
}

func TestTokenInQueryParam(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/user/profile?token="+s.tokenOf(s.reader), nil, nil)
	var info model.UserInfo
	decode(t, w, &info)
	require.Equal(t, s.reader.Id, info.Id)
}
