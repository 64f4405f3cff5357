// Package config loads runtime configuration for the cmsauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables CMS_SERVER, CMS_TOKEN and CMS_TIMEOUT.
//  3. Command-line flags preceding the sub-command, which override earlier
//     values.
//
// Supported flags
//
//	-a string        base URL of the cmsauth HTTP API
//	-token string    bearer token for commands that need one
//	-timeout int     request timeout (seconds)
package config
