package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gin-gonic/gin"
	"github.com/rinblog/rin/app_config"
	"github.com/rinblog/rin/engine"
	"github.com/rinblog/rin/engine/modules"
	"github.com/rinblog/rin/file_store"
	"github.com/rinblog/rin/server"
	"github.com/rinblog/rin/server/middlewares"
	. "github.com/rinblog/rin/utils"
	"github.com/rinblog/rin/utils/dotenv"
	. "github.com/rinblog/rin/utils/flag"
	. "github.com/rinblog/rin/utils/log"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func cleanup() {
	if IsProdEnv() {
		CloseProfiler()
		CloseTracer()
	}
	Log.Info("api server shutdown")
}

func NewDogStatsdClient() statsd.ClientInterface {
	addr := os.Getenv("STATSD_ADDR")
	if addr == "" {
		return &statsd.NoOpClient{}
	}
	client, err := statsd.New(addr)
	if err != nil {
		Log.Error("fail to create statsd client, metrics are dropped: ", err)
		return &statsd.NoOpClient{}
	}
	return client
}

func main() {
	ParseFlags()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	// env files may carry DD_API_KEY
	InitLogger()
	defer cleanup()

	appConfig, err := app_config.ParseServerAppConfig(*AppConfigPath)
	if err != nil {
		Log.Warn("use default app config: ", err)
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("cannot connect to DB: ", err)
	}
	if err := DatabaseSetupAndMigration(db); err != nil {
		Log.Fatal(err)
	}

	tokens, err := middlewares.NewTokenIssuer(os.Getenv("JWT_SECRET"), middlewares.DefaultTokenExpiry)
	if err != nil {
		Log.Fatal(err)
	}

	deps := server.Dependencies{
		DB:          db,
		Tokens:      tokens,
		S3Config:    file_store.S3ConfigFromEnv(),
		AppConfig:   appConfig,
		FrontendUrl: os.Getenv("FRONTEND_URL"),
	}
	// Uploads answer with the config error until S3 is configured.
	if store, err := file_store.NewS3FileStore(deps.S3Config); err != nil {
		Log.Warn("file store disabled: ", err)
	} else {
		deps.FileStore = store
	}
	if github, err := server.NewGithubAuthenticatorFromEnv(); err != nil {
		Log.Warn("github login disabled: ", err)
	} else {
		deps.Github = github
	}

	eventbus := engine.NewEventBus()
	deps.EventBus = eventbus

	ctx, cancel := context.WithCancel(context.Background())
	e := engine.NewEngine([]engine.Module{
		// Probes every friend url on a cron schedule and records its health.
		modules.NewFriendChecker(
			modules.FriendCheckerConfig{
				Name:       "friend_checker",
				Cron:       appConfig.FRIEND_CHECK_CRON,
				Timeout:    time.Duration(appConfig.FRIEND_CHECK_TIMEOUT_MS) * time.Millisecond,
				RunOnStart: appConfig.FRIEND_CHECK_ON_START,
			},
			db,
			&http.Client{},
			NewDogStatsdClient(),
		),
		// Posts new comments to the webhook.
		modules.NewNotifier(
			modules.NotifierConfig{
				Name:        "notifier",
				WebhookUrl:  os.Getenv("WEBHOOK_URL"),
				FrontendUrl: deps.FrontendUrl,
			},
			eventbus,
		),
	}, ctx, cancel, eventbus)
	go e.Run()

	var extra []gin.HandlerFunc
	if IsProdEnv() {
		StartTracer()
		StartProfiler()
		extra = append(extra, gintrace.Middleware(*ServiceName))
	}
	router := server.NewRouter(deps, extra...)

	srv := &http.Server{
		Addr:    appConfig.LISTEN_ADDR,
		Handler: router,
	}
	go func() {
		Log.Info("api server starts up on ", appConfig.LISTEN_ADDR)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Log.Fatal("api server stopped: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Log.Error("fail to shutdown http server: ", err)
	}
	e.Shutdown()
}
