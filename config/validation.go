package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that the configuration is usable in the
// current environment. Development and test tolerate missing secrets;
// production does not.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.ServerPort == "" {
		errs = append(errs, "SERVER_PORT must not be empty")
	}
	if cfg.BaseURL == "" {
		errs = append(errs, "BASE_URL must not be empty")
	}
	if strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	if IsProduction() {
		if cfg.JWTSecret == "" {
			errs = append(errs, "jwt_secret secret or JWT_SECRET is required in production")
		}
		if cfg.DBPassword == "" {
			errs = append(errs, "db_password secret or DB_PASSWORD is required in production")
		}
		if cfg.DBSSLMode == "disable" {
			errs = append(errs, "DB_SSL_MODE must not be disable in production")
		}
	}
	if cfg.JWTSecret == "" {
		// Development fallback keeps local runs working; production
		// rejects it above.
		cfg.JWTSecret = "dev-secret"
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
