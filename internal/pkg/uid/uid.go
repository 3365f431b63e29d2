// Package uid generates opaque string identifiers.
package uid

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}
