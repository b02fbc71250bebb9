package modules

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rinblog/rin/model"
	Logger "github.com/rinblog/rin/utils/log"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	STATSD_FRIEND_HEALTHY   = "rin.friend.healthy"
	STATSD_FRIEND_UNHEALTHY = "rin.friend.unhealthy"
)

// HttpDoer is satisfied by *http.Client.
type HttpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type FriendCheckerConfig struct {
	Name string
	// Standard 5 field cron expression.
	Cron string
	// Timeout of a single probe.
	Timeout time.Duration
	// Check once before waiting for the first cron tick.
	RunOnStart bool
}

// FriendCheckResult counts one pass over the friend table.
type FriendCheckResult struct {
	Total     int
	Healthy   int
	Unhealthy int
}

// FriendChecker periodically GETs every friend url and records the outcome in
// Friend.Health. Friends are probed one after another.
type FriendChecker struct {
	Config FriendCheckerConfig

	DB *gorm.DB

	Client HttpDoer

	Statsd statsd.ClientInterface

	cron *cron.Cron
}

func NewFriendChecker(config FriendCheckerConfig, db *gorm.DB, client HttpDoer, statsd statsd.ClientInterface) *FriendChecker {
	return &FriendChecker{
		Config: config,
		DB:     db,
		Client: client,
		Statsd: statsd,
	}
}

// probe returns the health string of url: "" on 2xx, the status code
// otherwise, or the request error message.
func (c *FriendChecker) probe(ctx context.Context, url string) (health string, healthy bool) {
	if c.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Config.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err.Error(), false
	}
	res, err := c.Client.Do(req)
	if err != nil {
		return err.Error(), false
	}
	defer res.Body.Close()

	Logger.Log.Infof("response status: %d", res.StatusCode)
	Logger.Log.Infof("response statusText: %s", http.StatusText(res.StatusCode))
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return "", true
	}
	return strconv.Itoa(res.StatusCode), false
}

// CheckAll probes every friend once. A failed probe or a failed write is
// logged and the loop moves on to the next friend.
func (c *FriendChecker) CheckAll(ctx context.Context) FriendCheckResult {
	var friends []model.Friend
	if err := c.DB.WithContext(ctx).Order("id").Find(&friends).Error; err != nil {
		Logger.Log.Error("fail to list friends: ", err)
		return FriendCheckResult{}
	}
	Logger.Log.Infof("total friends: %d", len(friends))

	result := FriendCheckResult{}
	for _, friend := range friends {
		Logger.Log.Infof("checking %s: %s", friend.Name, friend.Url)
		health, healthy := c.probe(ctx, friend.Url)
		if healthy {
			result.Healthy++
		} else {
			Logger.Log.Error(health)
			result.Unhealthy++
		}
		err := c.DB.WithContext(ctx).Model(&model.Friend{}).Where("id = ?", friend.Id).Update("health", health).Error
		if err != nil {
			Logger.Log.WithField("friend_id", friend.Id).Error("fail to update friend health: ", err)
		}
	}
	result.Total = result.Healthy + result.Unhealthy

	Logger.Log.Infof("update friends health done. Total: %d, Healthy: %d, Unhealthy: %d", result.Total, result.Healthy, result.Unhealthy)
	c.report(result)
	return result
}

func (c *FriendChecker) report(result FriendCheckResult) {
	if c.Statsd == nil {
		return
	}
	if err := c.Statsd.Gauge(STATSD_FRIEND_HEALTHY, float64(result.Healthy), nil, 1); err != nil {
		Logger.Log.Infoln("cannot report friend health")
	}
	if err := c.Statsd.Gauge(STATSD_FRIEND_UNHEALTHY, float64(result.Unhealthy), nil, 1); err != nil {
		Logger.Log.Infoln("cannot report friend health")
	}
}

func (c *FriendChecker) RunModule(ctx context.Context) error {
	c.cron = cron.New()
	if _, err := c.cron.AddFunc(c.Config.Cron, func() { c.CheckAll(ctx) }); err != nil {
		return err
	}
	if c.Config.RunOnStart {
		c.CheckAll(ctx)
	}
	c.cron.Start()
	<-ctx.Done()
	// Wait for a running check to finish.
	<-c.cron.Stop().Done()
	return nil
}

func (c *FriendChecker) Name() string {
	return c.Config.Name
}

func (c *FriendChecker) Shutdown() {}
