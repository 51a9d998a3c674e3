package secure

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMasker_Redact(t *testing.T) {
	m := NewMasker(NewValue("p@ss word&1"), NewValue("qa@example.com"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "raw", in: "typed p@ss word&1 into field", want: "typed ******** into field"},
		{name: "query escaped", in: "loginId=" + url.QueryEscape("qa@example.com"), want: "loginId=********"},
		{name: "path escaped", in: "/u/" + url.PathEscape("p@ss word&1"), want: "/u/********"},
		{name: "json escaped", in: `{"password":"p@ss word&1"}`, want: `{"password":"********"}`},
		{name: "untouched", in: "nothing secret here", want: "nothing secret here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Redact(tt.in))
		})
	}
}

func TestMasker_IgnoresEmptyAndNil(t *testing.T) {
	m := NewMasker(NewValue(""))
	assert.Equal(t, "abc", m.Redact("abc"))

	var nilMasker *Masker
	assert.Equal(t, "abc", nilMasker.Redact("abc"))
}

func TestMasker_RegisterLater(t *testing.T) {
	m := NewMasker()
	assert.Equal(t, "token abc", m.Redact("token abc"))

	m.Register(NewValue("abc"))
	assert.Equal(t, "token ********", m.Redact("token abc"))
	assert.Equal(t, []byte("token ********"), m.RedactBytes([]byte("token abc")))
}

func TestMasker_Logf(t *testing.T) {
	m := NewMasker(NewValue("hunter2"))
	var got string
	logf := m.Logf(func(format string, args ...any) {
		got = fmt.Sprintf(format, args...)
	})

	logf("send %s to %s", "hunter2", "input")
	assert.Equal(t, "send ******** to input", got)
}

func TestMasker_CDPJSONForm(t *testing.T) {
	m := NewMasker(NewValue(`Pa"ss&1<x>`))

	// CDP messages escape quotes but leave &, < and > alone.
	assert.Equal(t, `{"value":"********"}`, m.Redact(`{"value":"Pa\"ss&1<x>"}`))
	// encoding/json output escapes them as \u0026, \u003c and \u003e.
	assert.Equal(t, `{"value":"********"}`, m.Redact(`{"value":"Pa\"ss\u00261\u003cx\u003e"}`))
}
