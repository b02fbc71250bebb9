package engine

import (
	"context"
	"time"

	Logger "github.com/rinblog/rin/utils/log"
)

const (
	GracefulRetryDelay = 3
)

// RunModuleWithGracefulRestart keeps a module running until it returns nil,
// restarting it after GracefulRetryDelay seconds on error. Returns early once
// ctx is done.
func RunModuleWithGracefulRestart(ctx context.Context, module Module) {
	for {
		err := module.RunModule(ctx)
		if err == nil {
			break
		}
		Logger.Log.Errorf(
			"Module %s exited with error %v, retry in %d seconds",
			module.Name(),
			err,
			GracefulRetryDelay)

		// Wait for a small amount of time and restart.
		select {
		case <-ctx.Done():
			return
		case <-time.After(GracefulRetryDelay * time.Second):
		}
	}
}

type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance. Note
	// that if there are multiple instances of the same module, each instance
	// should have a unique name instead of using the same name.
	Name() string

	// Shutdown releases what the module holds. Called after the engine context
	// is cancelled.
	Shutdown()
}
