package utils

import (
	"github.com/rinblog/rin/utils/dotenv"
	"github.com/rinblog/rin/utils/flag"
	Logger "github.com/rinblog/rin/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// IsProdEnv returns true when running with RIN_ENV=prod.
func IsProdEnv() bool {
	return dotenv.CurrentEnv() == dotenv.ProdEnv
}

func envName() string {
	if IsProdEnv() {
		return "production"
	}
	return "development"
}

// StartTracer starts the Datadog tracer. Only call it in production, the agent
// is not available elsewhere.
func StartTracer() {
	tracer.Start(
		tracer.WithService(*flag.ServiceName),
		tracer.WithEnv(envName()),
	)
	Logger.Log.Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
