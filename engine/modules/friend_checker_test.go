package modules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rinblog/rin/model"
	"github.com/rinblog/rin/utils"
	"github.com/rinblog/rin/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

type gaugeRecorder struct {
	statsd.NoOpClient
	gauges map[string]float64
}

func (g *gaugeRecorder) Gauge(name string, value float64, tags []string, rate float64) error {
	g.gauges[name] = value
	return nil
}

func statusServer(t *testing.T, status int) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFriendCheckerCheckAll(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	owner := utils.TestCreateUserAndValidate(t, "owner", model.PermissionAdmin, db)

	healthy := statusServer(t, http.StatusOK)
	broken := statusServer(t, http.StatusServiceUnavailable)
	down := httptest.NewServer(http.NotFoundHandler())
	downUrl := down.URL
	down.Close()

	okFriend := utils.TestCreateFriendAndValidate(t, owner.Id, "healthy", healthy.URL, 1, db)
	require.NoError(t, db.Model(okFriend).Update("health", "502").Error)
	brokenFriend := utils.TestCreateFriendAndValidate(t, owner.Id, "broken", broken.URL, 1, db)
	downFriend := utils.TestCreateFriendAndValidate(t, owner.Id, "down", downUrl, 0, db)
	invalidFriend := utils.TestCreateFriendAndValidate(t, owner.Id, "invalid", "://not a url", 0, db)

	recorder := &gaugeRecorder{gauges: map[string]float64{}}
	checker := NewFriendChecker(FriendCheckerConfig{
		Name:    "friend_checker",
		Cron:    "@every 1h",
		Timeout: 2 * time.Second,
	}, db, http.DefaultClient, recorder)

	result := checker.CheckAll(context.Background())
	require.Equal(t, FriendCheckResult{Total: 4, Healthy: 1, Unhealthy: 3}, result)
	assert.Equal(t, float64(1), recorder.gauges[STATSD_FRIEND_HEALTHY])
	assert.Equal(t, float64(3), recorder.gauges[STATSD_FRIEND_UNHEALTHY])

	reload := func(id uint) model.Friend {
		var friend model.Friend
		require.NoError(t, db.First(&friend, id).Error)
		return friend
	}
	assert.Equal(t, "", reload(okFriend.Id).Health)
	assert.Equal(t, "503", reload(brokenFriend.Id).Health)
	assert.Contains(t, reload(downFriend.Id).Health, downUrl)
	assert.NotEmpty(t, reload(invalidFriend.Id).Health)
}

func TestFriendCheckerEmptyTable(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	checker := NewFriendChecker(FriendCheckerConfig{Name: "friend_checker", Cron: "@every 1h"}, db, http.DefaultClient, nil)
	require.Equal(t, FriendCheckResult{}, checker.CheckAll(context.Background()))
}

func TestFriendCheckerRunModule(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	owner := utils.TestCreateUserAndValidate(t, "owner", model.PermissionAdmin, db)
	broken := statusServer(t, http.StatusNotFound)
	friend := utils.TestCreateFriendAndValidate(t, owner.Id, "broken", broken.URL, 1, db)

	checker := NewFriendChecker(FriendCheckerConfig{
		Name:       "friend_checker",
		Cron:       "@every 1h",
		Timeout:    time.Second,
		RunOnStart: true,
	}, db, http.DefaultClient, &statsd.NoOpClient{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- checker.RunModule(ctx) }()

	require.Eventually(t, func() bool {
		var reloaded model.Friend
		db.First(&reloaded, friend.Id)
		return reloaded.Health == "404"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("friend checker did not stop")
	}
}

func TestFriendCheckerInvalidCron(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	checker := NewFriendChecker(FriendCheckerConfig{Name: "friend_checker", Cron: "not a cron"}, db, http.DefaultClient, nil)
	require.Error(t, checker.RunModule(context.Background()))
}
