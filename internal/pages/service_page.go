package pages

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/browser"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
)

// DefaultServicePath is the QA service landing page under the CMS base URL.
const DefaultServicePath = "/qa-service"

const (
	loginClickTimeout = 5 * time.Second
	loggedInTimeout   = 60 * time.Second
	networkIdleWait   = 30 * time.Second
	loginSettle       = time.Second
	serviceHeading    = "Quality Assurance Service"
)

// ServicePage is the QA service landing page of the CMS.
type ServicePage struct {
	page    interfaces.Page
	logger  arbor.ILogger
	baseURL string
	path    string

	LoginLink interfaces.Element
	Heading   interfaces.Element
}

// NewServicePage binds the landing page of baseURL (e.g. "https://cms.example.com").
func NewServicePage(page interfaces.Page, logger arbor.ILogger, baseURL, path string) *ServicePage {
	if path == "" {
		path = DefaultServicePath
	}
	return &ServicePage{
		page:      page,
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		path:      path,
		LoginLink: page.Locate(interfaces.Role("link", "Login")),
		Heading:   page.Locate(interfaces.CSS("h1, h2, h3").Filter(serviceHeading)),
	}
}

// URL returns the absolute landing page URL.
func (p *ServicePage) URL() string {
	return p.baseURL + p.path
}

// Goto opens the landing page.
func (p *ServicePage) Goto(ctx context.Context) error {
	return p.page.Navigate(ctx, p.URL())
}

// ClickLogin waits for the page to go quiet, brings the login link into view
// and activates it, falling back to a direct DOM click once if the standard
// click fails.
func (p *ServicePage) ClickLogin(ctx context.Context) (Activation, error) {
	if err := p.page.WaitForLoadState(ctx, interfaces.LoadStateNetworkIdle, networkIdleWait); err != nil {
		return ActivatePrimary, err
	}
	if err := p.LoginLink.ScrollIntoView(ctx); err != nil {
		return ActivatePrimary, err
	}
	if err := p.page.Settle(ctx, loginSettle); err != nil {
		return ActivatePrimary, err
	}
	return activate(ctx, p.logger, p.LoginLink, loginClickTimeout)
}

// WaitUntilLoggedIn waits for the identity provider to redirect back to the CMS.
func (p *ServicePage) WaitUntilLoggedIn(ctx context.Context) error {
	host := p.baseURL
	if u, err := url.Parse(p.baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	if err := p.page.WaitForURL(ctx, browser.Contains(host), loggedInTimeout); err != nil {
		return fmt.Errorf("login did not return to %s: %w", host, err)
	}
	return nil
}
