package secure

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValue_NeverFormatsSecret(t *testing.T) {
	v := NewValue("s3cr3t-P@ss")

	formats := []string{"%v", "%+v", "%#v", "%s", "%q", "%x", "%10s"}
	for _, f := range formats {
		t.Run(f, func(t *testing.T) {
			assert.NotContains(t, fmt.Sprintf(f, v), "s3cr3t")
		})
	}

	assert.Equal(t, Mask, v.String())
	assert.Equal(t, "s3cr3t-P@ss", v.Reveal())
}

func TestValue_NestedInStruct(t *testing.T) {
	type creds struct {
		Email    Value
		Password Value
	}
	c := creds{Email: NewValue("qa@example.com"), Password: NewValue("hunter2")}

	out := fmt.Sprintf("%+v", c)
	assert.NotContains(t, out, "qa@example.com")
	assert.NotContains(t, out, "hunter2")

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Email":"********","Password":"********"}`, string(b))

	y, err := yaml.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(y), "hunter2")
	assert.Contains(t, string(y), Mask)
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, NewValue("").IsEmpty())
	assert.True(t, Value{}.IsEmpty())
	assert.False(t, NewValue("x").IsEmpty())
}
