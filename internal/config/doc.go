// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// The instrument registry is given inline under instruments: or in a separate
// file named by instruments_file:.
package config
