package secure

import (
	"fmt"
)

// Mask is what a Value prints as in every format.
const Mask = "********"

// Value is a sensitive string, such as a password, that may be typed into the
// page but never rendered into a report, log line or trace.
type Value struct {
	v string
}

// NewValue wraps s.
func NewValue(s string) Value {
	return Value{v: s}
}

// Reveal returns the underlying string. Only engine calls should use it.
func (v Value) Reveal() string { return v.v }

// IsEmpty reports whether the value is the empty string.
func (v Value) IsEmpty() bool { return v.v == "" }

func (v Value) String() string { return Mask }

func (v Value) GoString() string { return "secure.Value(" + Mask + ")" }

// Format covers %v, %+v, %s, %q and %x.
func (v Value) Format(f fmt.State, verb rune) {
	switch verb {
	case 'q':
		fmt.Fprintf(f, "%q", Mask)
	case 'v':
		if f.Flag('#') {
			_, _ = f.Write([]byte(v.GoString()))
			return
		}
		_, _ = f.Write([]byte(Mask))
	default:
		_, _ = f.Write([]byte(Mask))
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Mask + `"`), nil
}

func (v Value) MarshalText() ([]byte, error) {
	return []byte(Mask), nil
}

func (v Value) MarshalYAML() (any, error) {
	return Mask, nil
}
