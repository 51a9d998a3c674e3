package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const summaryFile = "index.html"

// RenderSummary loads the results in dir and writes index.html next to them.
// It returns the path of the written file.
func RenderSummary(dir string) (string, error) {
	results, err := LoadResults(dir)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	if err := md.Convert([]byte(SummaryMarkdown(results)), &body); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}

	page := fmt.Sprintf(pageTemplate, body.String())
	path := filepath.Join(dir, summaryFile)
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}

// SummaryMarkdown renders results as a markdown report: a counts line, one
// table row per attempt and a section per unsuccessful attempt with its
// failure path and attachments.
func SummaryMarkdown(results []Result) string {
	var b strings.Builder
	s := Summarize(results)

	b.WriteString("# Turn Green E2E results\n\n")
	fmt.Fprintf(&b, "%d attempts: %d passed, %d failed, %d broken, %d skipped\n\n",
		s.Total, s.Passed, s.Failed, s.Broken, s.Skipped)

	if len(results) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}

	b.WriteString("| Scenario | Attempt | Status | Duration |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			cell(r.FullName), cell(r.Parameter("attempt")), statusBadge(r.Status), r.Duration())
	}

	for _, r := range results {
		if r.Status == string(models.RunPassed) {
			continue
		}
		fmt.Fprintf(&b, "\n## %s (attempt %s)\n\n", escape(r.Name), escape(r.Parameter("attempt")))
		fmt.Fprintf(&b, "Category: **%s**\n\n", categoryOf(r.Status))
		if r.StatusDetails != nil {
			fmt.Fprintf(&b, "```\n%s\n```\n\n", r.StatusDetails.Message)
		}

		if path := r.FailurePath(); len(path) > 0 {
			b.WriteString("Failing step:\n\n")
			for i, step := range path {
				fmt.Fprintf(&b, "%s- %s\n", strings.Repeat("  ", i), escape(step.Name))
			}
			b.WriteString("\n")

			for _, step := range path {
				for _, a := range step.Attachments {
					fmt.Fprintf(&b, "- [%s](%s)\n", escape(a.Name), a.Source)
				}
			}
		}
		for _, a := range r.Attachments {
			fmt.Fprintf(&b, "- [%s](%s)\n", escape(a.Name), a.Source)
		}
	}

	return b.String()
}

func categoryOf(status string) string {
	for _, c := range Categories {
		for _, s := range c.MatchedStatuses {
			if s == status {
				return c.Name
			}
		}
	}
	return "Passed"
}

func statusBadge(status string) string {
	switch models.RunStatus(status) {
	case models.RunPassed:
		return status
	case models.RunFailed, models.RunBroken:
		return "**" + status + "**"
	}
	return "~~" + status + "~~"
}

// escape keeps step names from being read as markdown or raw HTML.
func escape(s string) string {
	s = html.EscapeString(s)
	return strings.NewReplacer("*", "\\*", "_", "\\_", "`", "\\`", "[", "\\[", "]", "\\]", "#", "\\#").Replace(s)
}

func cell(s string) string {
	return strings.ReplaceAll(escape(s), "|", "\\|")
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Turn Green E2E results</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #1d2b1f; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #c9d6cb; padding: .4rem .6rem; text-align: left; }
pre { background: #f3f6f3; padding: .8rem; overflow-x: auto; }
</style>
</head>
<body>
%s
</body>
</html>
`
