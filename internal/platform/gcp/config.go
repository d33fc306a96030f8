package gcp

import (
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Config locates credentials for gs:// inputs. Credentials holds either an
// inline service-account JSON document or a path to one; empty falls back to
// application default credentials.
type Config struct {
	Credentials  string `yaml:"credentials"`
	EmulatorHost string `yaml:"emulator_host"`
}

// ConfigFromEnv reads GOOGLE_APPLICATION_CREDENTIALS_JSON, then
// GOOGLE_APPLICATION_CREDENTIALS, and STORAGE_EMULATOR_HOST.
func ConfigFromEnv(base Config) Config {
	if v := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")); v != "" {
		base.Credentials = v
	} else if v := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); v != "" {
		base.Credentials = v
	}
	if v := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")); v != "" {
		base.EmulatorHost = v
	}
	return base
}

func (c Config) emulator() string {
	return strings.TrimRight(strings.TrimSpace(c.EmulatorHost), "/")
}

func (c Config) clientOptions() []option.ClientOption {
	if host := c.emulator(); host != "" {
		// the storage client only honours the emulator through the environment
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadOnly)}
	creds := strings.TrimSpace(c.Credentials)
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}
