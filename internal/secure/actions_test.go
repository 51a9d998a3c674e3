package secure

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/browser/fakebrowser"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

func newActions() (*Actions, *steps.Reporter) {
	m := NewMasker()
	r := steps.NewReporter(arbor.NewNoOpLogger(), steps.WithRedactor(m.Redact))
	return NewActions(r, m), r
}

func allText(rec *models.StepRecord) string {
	var s string
	rec.Walk(func(_ int, r *models.StepRecord) {
		s += r.Name + "\n" + r.Error + "\n"
	})
	return s
}

func TestFill_RecordsDescriptionOnly(t *testing.T) {
	a, r := newActions()
	page := fakebrowser.NewPage()
	el := page.Element(interfaces.CSS(`input[name="password"]`))

	err := a.Fill(context.Background(), nil, el, NewValue("Sup3rS3cret!"), "password")
	require.NoError(t, err)

	roots := r.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "Fill password (value masked for security)", roots[0].Name)
	assert.Equal(t, models.StepPassed, roots[0].Status)
	assert.Empty(t, roots[0].Children)
	assert.NotContains(t, allText(roots[0]), "Sup3rS3cret!")

	assert.Equal(t, "Sup3rS3cret!", el.CurrentValue())
	for _, c := range page.Calls() {
		assert.NotContains(t, c.String(), "Sup3rS3cret!")
	}
	assert.Empty(t, page.CallsOf("click"), "fill must not click")
}

func TestFill_FailureMasksValue(t *testing.T) {
	a, r := newActions()
	page := fakebrowser.NewPage()
	el := page.Element(interfaces.CSS("#email"))
	el.SetValueErr = errors.New("cannot set value qa@example.com: read-only")

	err := a.Fill(context.Background(), nil, el, NewValue("qa@example.com"), "login email")
	require.Error(t, err)
	assert.True(t, errors.Is(err, el.SetValueErr))

	rec := r.Roots()[0]
	assert.Equal(t, models.StepFailed, rec.Status)
	assert.NotContains(t, rec.Error, "qa@example.com")
	assert.Contains(t, rec.Error, Mask)
}

func TestFill_MissingElement(t *testing.T) {
	a, r := newActions()
	page := fakebrowser.NewPage()
	el := page.Element(interfaces.CSS("#nope"))
	el.Missing = true

	err := a.Fill(context.Background(), nil, el, NewValue("x"), "nothing")

	var enf *models.ElementNotFoundError
	require.True(t, errors.As(err, &enf))
	assert.Equal(t, models.StepFailed, r.Roots()[0].Status)
}

func TestClick(t *testing.T) {
	a, r := newActions()
	page := fakebrowser.NewPage()
	el := page.Element(interfaces.Role("button", "Submit"))

	require.NoError(t, a.Click(context.Background(), nil, el, "submit button"))

	assert.Equal(t, "Click submit button", r.Roots()[0].Name)
	assert.Len(t, page.CallsOf("click"), 1)
}

func TestClick_PropagatesError(t *testing.T) {
	a, r := newActions()
	page := fakebrowser.NewPage()
	el := page.Element(interfaces.CSS("#btn"))
	cause := &models.TimeoutError{Operation: "click #btn"}
	el.ClickErrs = []error{cause}

	err := a.Click(context.Background(), nil, el, "button")

	var te *models.TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Same(t, cause, te)
	assert.Equal(t, models.StepFailed, r.Roots()[0].Status)
}

func TestLogin_SingleStepNoChildren(t *testing.T) {
	a, r := newActions()
	page := fakebrowser.NewPage()
	email := page.Element(interfaces.CSS(`input[name="loginId"]`))
	password := page.Element(interfaces.CSS(`input[name="password"]`))

	err := a.Login(context.Background(), nil, email, password, NewValue("qa@example.com"), NewValue("hunter2"))
	require.NoError(t, err)

	roots := r.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, LoginStepName, roots[0].Name)
	assert.Empty(t, roots[0].Children)
	assert.Equal(t, "qa@example.com", email.CurrentValue())
	assert.Equal(t, "hunter2", password.CurrentValue())

	text := allText(roots[0])
	assert.NotContains(t, text, "qa@example.com")
	assert.NotContains(t, text, "hunter2")
}

func TestRepeatedCallsProduceIdenticalShape(t *testing.T) {
	shape := func() string {
		a, r := newActions()
		page := fakebrowser.NewPage()
		ctx := context.Background()
		el := page.Element(interfaces.CSS("#f"))
		_ = r.Run(ctx, nil, "group", func(ctx context.Context, s *steps.Step) error {
			if err := a.Fill(ctx, s, el, NewValue("v"), "field"); err != nil {
				return err
			}
			return a.Click(ctx, s, el, "field")
		})
		var out string
		r.Roots()[0].Walk(func(depth int, rec *models.StepRecord) {
			out += fmt.Sprintf("%d:%s:%s;", depth, rec.Name, rec.Status)
		})
		return out
	}

	first := shape()
	assert.Equal(t, first, shape())
	assert.Equal(t, "0:group:passed;1:Fill field (value masked for security):passed;1:Click field:passed;", first)
}
