package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeOff         Mode = "off"
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

type Config struct {
	Mode         Mode
	LocalDir     string
	Bucket       string
	EmulatorHost string
	// Credentials is either a path to a service account file or the JSON itself.
	Credentials string
}

func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeOff, nil
	case ModeOff, ModeLocal, ModeGCS, ModeGCSEmulator:
		return m, nil
	default:
		return "", &ConfigError{Code: ConfigErrorInvalidMode, Mode: raw}
	}
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingLocalDir     ConfigErrorCode = "missing_local_dir"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidEmulatorHost ConfigErrorCode = "invalid_emulator_host"
)

type ConfigError struct {
	Code         ConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid snapshot storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid SNAPSHOT_STORAGE_MODE=%q (allowed: %q, %q, %q, %q)",
			e.Mode, ModeOff, ModeLocal, ModeGCS, ModeGCSEmulator)
	case ConfigErrorMissingLocalDir:
		return fmt.Sprintf("SNAPSHOT_STORAGE_MODE=%q requires SNAPSHOT_LOCAL_DIR", e.Mode)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("SNAPSHOT_STORAGE_MODE=%q requires SNAPSHOT_GCS_BUCKET", e.Mode)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("SNAPSHOT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", e.Mode)
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid snapshot storage config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func Validate(cfg Config) error {
	switch cfg.Mode {
	case ModeOff:
		return nil
	case ModeLocal:
		if strings.TrimSpace(cfg.LocalDir) == "" {
			return &ConfigError{Code: ConfigErrorMissingLocalDir, Mode: string(cfg.Mode)}
		}
		return nil
	case ModeGCS, ModeGCSEmulator:
		if strings.TrimSpace(cfg.Bucket) == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode)}
		}
	default:
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.Mode != ModeGCSEmulator {
		return nil
	}
	if strings.TrimSpace(cfg.EmulatorHost) == "" {
		return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return &ConfigError{
			Code:         ConfigErrorInvalidEmulatorHost,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
	}
	return nil
}
