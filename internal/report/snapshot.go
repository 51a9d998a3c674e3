package report

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// TextSnapshot converts a captured page to markdown so the visible text of a
// failing page can be read and diffed without a browser. Relative links are
// resolved against baseURL.
func TextSnapshot(pageHTML, baseURL string) (string, error) {
	if strings.TrimSpace(pageHTML) == "" {
		return "", nil
	}

	converter := md.NewConverter(baseURL, true, nil)
	converter.Remove("script", "style", "noscript", "svg")

	converted, err := converter.ConvertString(pageHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(converted) + "\n", nil
}
