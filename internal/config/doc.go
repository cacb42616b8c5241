// Package config defines the application configuration structure and
// loading logic. Configuration comes from an optional YAML file and
// KINDLY_-prefixed environment variables, with env vars taking precedence.
package config
