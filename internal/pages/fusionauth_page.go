package pages

import (
	"context"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/browser"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/secure"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

const (
	loginPageTimeout = 30 * time.Second
	authorizeGlob    = "**/oauth2/authorize**"
)

// FusionAuthLoginPage is the hosted login form of the FusionAuth identity provider.
type FusionAuthLoginPage struct {
	page    interfaces.Page
	actions *secure.Actions

	LoginIDField  interfaces.Element
	PasswordField interfaces.Element
	SubmitButton  interfaces.Element
}

func NewFusionAuthLoginPage(page interfaces.Page, actions *secure.Actions) *FusionAuthLoginPage {
	return &FusionAuthLoginPage{
		page:          page,
		actions:       actions,
		LoginIDField:  page.Locate(interfaces.CSS(`input[name="loginId"]`)),
		PasswordField: page.Locate(interfaces.CSS(`input[name="password"]`)),
		SubmitButton:  page.Locate(interfaces.Role("button", "Submit")),
	}
}

// WaitForLoginPage waits for the authorize endpoint to be loaded.
func (p *FusionAuthLoginPage) WaitForLoginPage(ctx context.Context) error {
	return p.page.WaitForURL(ctx, browser.Glob(authorizeGlob), loginPageTimeout)
}

// FillLoginAndSubmit enters both credentials and submits the form. Each
// action is its own step; values never reach the step tree.
func (p *FusionAuthLoginPage) FillLoginAndSubmit(ctx context.Context, parent *steps.Step, email, password secure.Value) error {
	if err := p.actions.Fill(ctx, parent, p.LoginIDField, email, "login email"); err != nil {
		return err
	}
	if err := p.actions.Fill(ctx, parent, p.PasswordField, password, "password"); err != nil {
		return err
	}
	return p.actions.Click(ctx, parent, p.SubmitButton, "submit button")
}

// Login waits for the login form and submits the credentials.
func (p *FusionAuthLoginPage) Login(ctx context.Context, parent *steps.Step, email, password secure.Value) error {
	if err := p.WaitForLoginPage(ctx); err != nil {
		return err
	}
	return p.FillLoginAndSubmit(ctx, parent, email, password)
}
