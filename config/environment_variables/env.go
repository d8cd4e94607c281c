package environment_variables

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type EnvironmentVariable struct {
	// Upstream listings provider.
	LISTINGHUB_BASE_URL string
	LISTINGHUB_API_KEY  string
	LISTINGHUB_TIMEOUT  time.Duration

	// Shared cache tier.
	CACHE_TYPE     string
	CACHE_URL      string
	CACHE_PASSWORD string
	CACHE_DB       string

	// Local cache tier.
	CACHE_LOCAL_CAPACITY int
	CACHE_LOCAL_MAX_TTL  time.Duration
	CACHE_SWEEP_INTERVAL time.Duration

	// Stale-while-revalidate windows.
	CACHE_FRESH_TTL       time.Duration
	CACHE_STALE_TTL       time.Duration
	CACHE_REFRESH_WORKERS int

	// Precompute / warming.
	WARMING_ENABLED     bool
	WARMING_SCHEDULE    string
	WARMING_CONCURRENCY int

	SERVER_PORT        int
	LOG_LEVEL          string
	ALLOWED_CORS_HOSTS []string
	ENABLE_ADMIN_API   bool
}

func (ev *EnvironmentVariable) LoadFromEnv() {
	v := reflect.ValueOf(ev).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		envKey := field.Name
		envValue := os.Getenv(envKey)
		if envValue == "" {
			fmt.Printf("Missing SYSENV: %s\n", envKey)
			continue
		}
		setField(v.Field(i), envKey, envValue)
	}
}

func setField(field reflect.Value, envKey, envValue string) {
	switch field.Interface().(type) {
	case time.Duration:
		d, err := time.ParseDuration(envValue)
		if err != nil {
			fmt.Printf("Invalid SYSENV %s=%q, keeping default\n", envKey, envValue)
			return
		}
		field.SetInt(int64(d))
	case string:
		field.SetString(envValue)
	case int:
		n, err := strconv.Atoi(envValue)
		if err != nil {
			fmt.Printf("Invalid SYSENV %s=%q, keeping default\n", envKey, envValue)
			return
		}
		field.SetInt(int64(n))
	case bool:
		b, err := strconv.ParseBool(envValue)
		if err != nil {
			fmt.Printf("Invalid SYSENV %s=%q, keeping default\n", envKey, envValue)
			return
		}
		field.SetBool(b)
	case []string:
		parts := strings.Split(envValue, ",")
		hosts := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				hosts = append(hosts, trimmed)
			}
		}
		field.Set(reflect.ValueOf(hosts))
	}
}

// Validate fails fast on configuration that would otherwise surface as
// call-time errors deep inside the cache engine.
func (ev *EnvironmentVariable) Validate() error {
	if ev.LISTINGHUB_BASE_URL == "" {
		return fmt.Errorf("LISTINGHUB_BASE_URL is required")
	}
	if ev.CACHE_FRESH_TTL > ev.CACHE_STALE_TTL {
		return fmt.Errorf("CACHE_FRESH_TTL (%s) must not exceed CACHE_STALE_TTL (%s)", ev.CACHE_FRESH_TTL, ev.CACHE_STALE_TTL)
	}
	if ev.CACHE_LOCAL_CAPACITY <= 0 {
		return fmt.Errorf("CACHE_LOCAL_CAPACITY must be positive, got %d", ev.CACHE_LOCAL_CAPACITY)
	}
	if ev.CACHE_REFRESH_WORKERS <= 0 {
		return fmt.Errorf("CACHE_REFRESH_WORKERS must be positive, got %d", ev.CACHE_REFRESH_WORKERS)
	}
	if ev.WARMING_CONCURRENCY <= 0 {
		return fmt.Errorf("WARMING_CONCURRENCY must be positive, got %d", ev.WARMING_CONCURRENCY)
	}
	return nil
}

// Singleton
var EnvironmentVariables = EnvironmentVariable{
	LISTINGHUB_TIMEOUT:    10 * time.Second,
	CACHE_TYPE:            "redis",
	CACHE_URL:             "redis://localhost:6379",
	CACHE_LOCAL_CAPACITY:  2000,
	CACHE_LOCAL_MAX_TTL:   2 * time.Minute,
	CACHE_SWEEP_INTERVAL:  time.Minute,
	CACHE_FRESH_TTL:       2 * time.Minute,
	CACHE_STALE_TTL:       10 * time.Minute,
	CACHE_REFRESH_WORKERS: 8,
	WARMING_ENABLED:       true,
	WARMING_SCHEDULE:      "*/15 * * * *",
	WARMING_CONCURRENCY:   4,
	SERVER_PORT:           8080,
	LOG_LEVEL:             "info",
	ENABLE_ADMIN_API:      true,
}
