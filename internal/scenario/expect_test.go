package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/turngreen-e2e/internal/browser/fakebrowser"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

func TestExpectVisible(t *testing.T) {
	page := fakebrowser.NewPage()
	ctx := context.Background()

	visible := page.Element(interfaces.CSS("h2"))
	assert.NoError(t, ExpectVisible(ctx, visible, time.Second))

	hidden := page.Element(interfaces.CSS("#hidden"))
	hidden.Visible = false
	err := ExpectVisible(ctx, hidden, time.Second)

	var ae *models.AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "#hidden", ae.Subject)
	assert.Equal(t, "expected #hidden to be visible, got not visible after 1s", ae.Error())
}

func TestExpectContainsText(t *testing.T) {
	page := fakebrowser.NewPage()
	ctx := context.Background()

	modal := page.Element(interfaces.CSS(`div[role="dialog"]`))
	modal.Content = "Solicitação enviada\nVai receber um contacto da equipa do Turn Green em breve."
	assert.NoError(t, ExpectContainsText(ctx, modal, SuccessMessage, time.Second))

	modal.Content = "Erro ao enviar"
	err := ExpectContainsText(ctx, modal, SuccessMessage, 150*time.Millisecond)
	var ae *models.AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, `"Erro ao enviar"`, ae.Actual)

	gone := page.Element(interfaces.CSS("#gone"))
	gone.Missing = true
	err = ExpectContainsText(ctx, gone, "x", 50*time.Millisecond)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "no matching element", ae.Actual)
}

func TestExpectContainsText_ContextCanceled(t *testing.T) {
	page := fakebrowser.NewPage()
	el := page.Element(interfaces.CSS("p"))
	el.Content = "other"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ExpectContainsText(ctx, el, "x", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpectHidden(t *testing.T) {
	page := fakebrowser.NewPage()
	ctx := context.Background()

	gone := page.Element(interfaces.CSS("#gone"))
	gone.Missing = true
	assert.NoError(t, ExpectHidden(ctx, gone, time.Second))

	form := page.Element(interfaces.Text("Pedido de serviço"))
	err := ExpectHidden(ctx, form, 150*time.Millisecond)
	var ae *models.AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "to be hidden", ae.Expected)
	assert.Equal(t, "still visible after 150ms", ae.Actual)

	form.Visible = false
	assert.NoError(t, ExpectHidden(ctx, form, time.Second))
}
