package utils

import (
	"github.com/rinblog/rin/utils/flag"
	Logger "github.com/rinblog/rin/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// StartProfiler starts the Datadog profiler, production only.
func StartProfiler() {
	if err := profiler.Start(
		profiler.WithService(*flag.ServiceName),
		profiler.WithEnv(envName()),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
		),
	); err != nil {
		Logger.Log.Error("fail to start profiler: ", err)
	}
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
