package entity

import (
	"strings"

	"github.com/samber/lo"
)

// CodeLength is the number of slots in a passcode.
const CodeLength = 6

// Digits is the segmented code buffer. Each slot is empty or one ASCII digit.
type Digits [CodeLength]string

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsDigitValue reports whether raw may be stored in a slot: empty, or exactly
// one decimal digit.
func IsDigitValue(raw string) bool {
	return raw == "" || (len(raw) == 1 && isDigitRune(rune(raw[0])))
}

// IsCode reports whether raw is 1..CodeLength decimal digits.
func IsCode(raw string) bool {
	return len(raw) > 0 && len(raw) <= CodeLength && lo.EveryBy([]rune(raw), isDigitRune)
}

// ValidIndex reports whether i addresses a slot.
func ValidIndex(i int) bool {
	return i >= 0 && i < CodeLength
}

// Complete reports whether every slot is populated.
func (d Digits) Complete() bool {
	return lo.EveryBy(d[:], func(s string) bool { return s != "" })
}

// Filled returns the number of populated slots.
func (d Digits) Filled() int {
	return lo.CountBy(d[:], func(s string) bool { return s != "" })
}

// Code concatenates the populated slots in order.
func (d Digits) Code() string {
	return strings.Join(d[:], "")
}

// Clear empties every slot.
func (d *Digits) Clear() {
	*d = Digits{}
}
