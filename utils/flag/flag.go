/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	ServiceName   *string
	AppConfigPath *string
)

func init() {
	ServiceName = flag.String("service", APIServer, "name reported to logs and traces")
	AppConfigPath = flag.String("app_config_path", "cmd/server/config.yaml", "path to the server app config")
}

// ParseFlags must be called from main, never from init, otherwise `go test`
// flags are rejected.
func ParseFlags() {
	flag.Parse()
}
