package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

const fixtureHTML = `<!doctype html>
<html><body>
<h2>Quality Assurance Service</h2>
<input name="loginId" id="login">
<p id="echo"></p>
<button aria-label="Submit" onclick="location.href='/done'">Go</button>
<script>
document.getElementById('login').addEventListener('change', function(e) {
  document.getElementById('echo').textContent = 'changed:' + e.target.value.length;
});
</script>
</body></html>`

func findChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in short mode")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome binary found")
	return ""
}

func TestSession_Browser(t *testing.T) {
	execPath := findChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.URL.Path == "/done" {
			_, _ = w.Write([]byte(`<html><body><h1>Done</h1></body></html>`))
			return
		}
		_, _ = w.Write([]byte(fixtureHTML))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	opts := DefaultOptions()
	opts.Headless = true
	opts.ExecPath = execPath
	s, err := OpenSession(ctx, opts, arbor.NewNoOpLogger())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/form"))
	require.NoError(t, s.WaitForLoadState(ctx, interfaces.LoadStateLoad, 10*time.Second))

	heading := s.Locate(interfaces.CSS("h1, h2, h3").Filter("quality assurance"))
	require.NoError(t, heading.WaitFor(ctx, interfaces.StateVisible, 5*time.Second))
	text, err := heading.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Quality Assurance Service", text)

	input := s.Locate(interfaces.CSS(`input[name="loginId"]`))
	require.NoError(t, input.SetValueSilently(ctx, "qa@example.com"))
	echo, err := s.Locate(interfaces.CSS("#echo")).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "changed:14", echo)

	var value string
	require.NoError(t, input.Evaluate(ctx, `function() { return this.value; }`, &value))
	assert.Equal(t, "qa@example.com", value)

	missing := s.Locate(interfaces.CSS("#does-not-exist"))
	err = missing.Click(ctx, 500*time.Millisecond)
	var enf *models.ElementNotFoundError
	assert.ErrorAs(t, err, &enf)

	require.NoError(t, s.Locate(interfaces.Role("button", "submit")).Click(ctx, 5*time.Second))
	require.NoError(t, s.WaitForURL(ctx, Glob("**/done"), 10*time.Second))

	err = s.WaitForURL(ctx, Glob("**/never"), 300*time.Millisecond)
	assert.True(t, models.IsTimeout(err))

	png, err := s.Screenshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
