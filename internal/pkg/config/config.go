package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving time-based configuration values.
type TimeConfig interface {
	// GetMillisecond retrieves the configuration value associated with the given key as milliseconds.
	// If the key does not exist or the value cannot be converted to an integer, zero is returned.
	GetMillisecond(key string) time.Duration

	// GetSecond retrieves the configuration value associated with the given key as seconds.
	// If the key does not exist or the value cannot be converted to an integer, zero is returned.
	GetSecond(key string) time.Duration
}

// Config defines a set of methods for retrieving configuration values of various types.
// Implementations handle retrieval and type conversion of configuration data and
// return the zero value for missing keys.
type Config interface {
	io.Closer
	TimeConfig

	// GetBool retrieves the configuration value associated with the given key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the configuration value associated with the given key as an int.
	GetInt(key string) int

	// GetUint64 retrieves the configuration value associated with the given key as a uint64.
	GetUint64(key string) uint64

	// GetFloat64 retrieves the configuration value associated with the given key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the configuration value associated with the given key as a string.
	GetString(key string) string

	// GetArray retrieves the configuration value associated with the given key as a slice of strings.
	// Configuration value is stored with format <element1>,<element2>,...
	// Blank elements are dropped.
	GetArray(key string) []string
}
