// Package config defines the application configuration structure and
// loads it from the environment and optional config files via viper.
package config
