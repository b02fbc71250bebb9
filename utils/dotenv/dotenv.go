package dotenv

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// EnvKey selects which set of .env files is loaded.
	EnvKey  = "RIN_ENV"
	DevEnv  = "dev"
	TestEnv = "test"
	ProdEnv = "prod"
)

// LoadDotEnvs loads the .env files following the convention: https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use
// It only need to be called once in main function, other code can use env through os.Getenv('ENV_NAME') during runtime
func LoadDotEnvs() error {
	loadDotEnvs("")
	return nil
}

// CurrentEnv returns the runtime env, "dev" when unset.
func CurrentEnv() string {
	env := os.Getenv(EnvKey)
	if env == "" {
		return DevEnv
	}
	return env
}

func loadDotEnvs(rootPath string) {
	env := CurrentEnv()

	// godotenv never overrides a variable that is already set, so files loaded
	// first win.
	// .env.[runtime_env].local has highest priority, usually contains username and password and other sensitive information
	godotenv.Load(filepath.Join(rootPath, ".env."+env+".local"))
	if env != TestEnv {
		godotenv.Load(filepath.Join(rootPath, ".env.local"))
	}
	// .env.[runtime_env] usually contains db connection information
	godotenv.Load(filepath.Join(rootPath, ".env."+env))
	// .env usually contains shared variables(which might be overwritten by envs above)
	godotenv.Load(filepath.Join(rootPath, ".env"))
}

// LoadDotEnvsInTests walks up from the working directory until it finds the
// module root and loads .env.test from there. Tests run inside package
// directories, so relative paths don't work.
func LoadDotEnvsInTests() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
	godotenv.Load(filepath.Join(dir, ".env.test"))
	return nil
}
