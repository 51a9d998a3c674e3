package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

func step(name string, ran *[]string, err error) Step {
	return Step{Name: name, Run: func(ctx context.Context, s *steps.Step) error {
		*ran = append(*ran, name)
		return err
	}}
}

func TestExecute_AllPass(t *testing.T) {
	var ran []string
	sc := &Scenario{Name: "journey", Steps: []Step{step("a", &ran, nil), step("b", &ran, nil)}}
	r := steps.NewReporter(arbor.NewNoOpLogger())

	root, err := sc.Execute(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, "journey", root.Name)
	assert.Equal(t, models.StepPassed, root.Status)
	assert.Len(t, root.Children, 2)
}

func TestExecute_FailFast(t *testing.T) {
	boom := &models.AssertionError{Subject: "heading", Expected: "to be visible"}

	for k := 0; k < 4; k++ {
		var ran []string
		var list []Step
		for i := 0; i < 4; i++ {
			var err error
			if i == k {
				err = boom
			}
			list = append(list, step(string(rune('a'+i)), &ran, err))
		}
		sc := &Scenario{Name: "journey", Steps: list}
		r := steps.NewReporter(arbor.NewNoOpLogger())

		root, err := sc.Execute(context.Background(), r)

		assert.Same(t, boom, err)
		assert.Len(t, ran, k+1, "steps after the failing one never run")
		assert.Equal(t, models.StepFailed, root.Status)
		require.Len(t, root.Children, k+1)
		assert.Equal(t, models.StepFailed, root.Children[k].Status)
		for i := 0; i < k; i++ {
			assert.Equal(t, models.StepPassed, root.Children[i].Status)
		}
	}
}

func TestExecute_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string
	sc := &Scenario{Name: "journey", Steps: []Step{
		{Name: "first", Run: func(ctx context.Context, s *steps.Step) error {
			ran = append(ran, "first")
			cancel()
			return nil
		}},
		step("second", &ran, nil),
	}}

	root, err := sc.Execute(ctx, steps.NewReporter(arbor.NewNoOpLogger()))

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"first"}, ran)
	assert.Equal(t, models.StepFailed, root.Status)
}

type mapSource map[string]string

func (m mapSource) RequiredValue(name string) (string, error) {
	if v := m[name]; v != "" {
		return v, nil
	}
	return "", &models.ConfigurationError{Name: name, Reason: name + " não definido no .env"}
}

func TestLoadCredentials(t *testing.T) {
	tests := []struct {
		name    string
		src     mapSource
		missing string
	}{
		{name: "both set", src: mapSource{EnvEmail: "qa@turngreen.test", EnvPassword: "pw"}},
		{name: "email empty", src: mapSource{EnvEmail: "", EnvPassword: "pw"}, missing: EnvEmail},
		{name: "password missing", src: mapSource{EnvEmail: "qa@turngreen.test"}, missing: EnvPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := LoadCredentials(tt.src)
			if tt.missing == "" {
				require.NoError(t, err)
				assert.Equal(t, "qa@turngreen.test", creds.Email.Reveal())
				assert.Len(t, creds.Values(), 2)
				return
			}
			var ce *models.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.missing, ce.Name)
		})
	}
}

func TestCatalog(t *testing.T) {
	defs := Catalog()
	require.Len(t, defs, 2)
	assert.Equal(t, CancelRequestScenario, defs[0].Name)
	assert.Equal(t, OpportunityScenario, defs[1].Name)

	d, ok := Lookup(OpportunityScenario)
	require.True(t, ok)
	assert.Equal(t, OpportunitySuite, d.Suite)
	assert.NotNil(t, d.Build)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}
