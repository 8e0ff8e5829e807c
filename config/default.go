package config

import _ "embed"

// DefaultConfigYAML is the built-in configuration compiled into the binary.
// External config files and EXPENSE_* environment variables override it.
//
//go:embed default.yaml
var DefaultConfigYAML []byte

// IsProduction reports whether the server runs in release mode.
func IsProduction() bool {
	return GlobalConfig != nil && GlobalConfig.Server.Mode == "release"
}

// SafeErrorMessage returns err.Error() in development and the fallback in
// release mode so internal details never leak to clients.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if IsProduction() {
		return fallback
	}
	return err.Error()
}
