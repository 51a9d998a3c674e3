package browser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlob(t *testing.T) {
	tests := []struct {
		glob  string
		url   string
		match bool
	}{
		{"**/oauth2/authorize**", "https://auth.turngreen.pt/oauth2/authorize?client_id=abc&redirect_uri=x", true},
		{"**/oauth2/authorize**", "https://auth.turngreen.pt/oauth2/authorize", true},
		{"**/oauth2/authorize**", "https://cms.turngreen.pt/qa-service", false},
		{"https://*/qa-service", "https://cms.turngreen.pt/qa-service", true},
		{"https://*/qa-service", "https://cms.turngreen.pt/a/qa-service", false},
		{"https://cms.turngreen.pt/qa-servic?", "https://cms.turngreen.pt/qa-service", true},
		{"**/pedido-serviço", "https://cms.turngreen.pt/pedido-serviço", true},
		{"https://a.b/c.d", "https://a.b/cXd", false},
	}
	for _, tt := range tests {
		t.Run(tt.glob+" "+tt.url, func(t *testing.T) {
			p := Glob(tt.glob)
			assert.Equal(t, tt.match, p.Match(tt.url))
			assert.Equal(t, tt.glob, p.String())
		})
	}
}

func TestRegexpAndContains(t *testing.T) {
	re := Regexp(regexp.MustCompile(`\Ahttps://cms\.turngreen\.pt/.*\z`))
	assert.True(t, re.Match("https://cms.turngreen.pt/qa-service"))
	assert.False(t, re.Match("https://auth.turngreen.pt/"))

	c := Contains("cms.turngreen.pt")
	assert.True(t, c.Match("https://cms.turngreen.pt/qa-service?x=1"))
	assert.False(t, c.Match("https://auth.turngreen.pt/oauth2/authorize"))
	assert.Equal(t, "*cms.turngreen.pt*", c.String())
}
