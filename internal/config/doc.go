// Package config loads toyrobot.yaml and environment overrides.
package config
