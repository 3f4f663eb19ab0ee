package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that required configuration values are present for
// the current environment. Missing values are reported together so operators
// fix them in one pass.
func ValidateConfig(cfg *Config) error {
	var missing []string

	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	case "postgres":
		if cfg.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if cfg.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if cfg.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", cfg.DBDriver)
	}

	switch cfg.ExportStorage {
	case "local":
		if cfg.ExportDir == "" {
			missing = append(missing, "EXPORT_DIR")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			missing = append(missing, "S3_BUCKET_NAME")
		}
	default:
		return fmt.Errorf("unsupported EXPORT_STORAGE %q (want local or s3)", cfg.ExportStorage)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
