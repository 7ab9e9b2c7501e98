package gateway

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultBaseURL     = "http://localhost:8000/api"
	DefaultLoginPath   = "auth/login"
	DefaultServiceName = "caisse-gateway"
)

type Config struct {
	BaseURL string `validate:"required,url"`
	// LoginPath is the one endpoint whose 401 means "bad credentials"
	// rather than "session expired".
	LoginPath   string
	ServiceName string
}

func (cfg *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

func (cfg *Config) setDefaults() {
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
}

// normalizePath strips slashes and any query string so that "auth/login",
// "/auth/login" and "/auth/login?x=1" compare equal.
func normalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.Trim(path, "/")
}
