// Package config loads odometer settings from an optional .odometer.yaml and
// ODOMETER_* environment variables.
package config
