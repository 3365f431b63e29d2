// Package clock provides a small time abstraction.
//
// Code that reads the current time or schedules callbacks should depend on the
// Clocker interface instead of calling time.Now or time.AfterFunc directly, so
// tests can swap in a Fake and move time forward deterministically.
package clock
