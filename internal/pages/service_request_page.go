package pages

import (
	"context"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/secure"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

const (
	formLoadTimeout     = 30 * time.Second
	successModalTimeout = 10 * time.Second
	termsSettle         = 500 * time.Millisecond
	termsCheckboxID     = "termsOfAgreement1"
)

// acceptTermsJS checks the hidden terms checkbox directly; the visible label
// is styled over it and does not always receive pointer clicks.
const acceptTermsJS = `(function() {
  const checkbox = document.querySelector('#` + termsCheckboxID + `');
  if (!checkbox) {
    return false;
  }
  checkbox.checked = true;
  checkbox.dispatchEvent(new Event('change', {bubbles: true}));
  checkbox.dispatchEvent(new Event('input', {bubbles: true}));
  return true;
})()`

// ServiceRequestPage is the "Pedido de serviço" form and its confirmation dialog.
type ServiceRequestPage struct {
	page    interfaces.Page
	actions *secure.Actions

	OpenButton        interfaces.Element
	FormTitle         interfaces.Element
	Cancel            interfaces.Element
	SubmitBtn         interfaces.Element
	SuccessModal      interfaces.Element
	SuccessModalTitle interfaces.Element
	SuccessModalClose interfaces.Element

	// Accordion sections of the form.
	OrganisationSection interfaces.Element
	RegistrationSection interfaces.Element
	BillingSection      interfaces.Element
	DetailsSection      interfaces.Element
	CPESection          interfaces.Element
	OtherInfoSection    interfaces.Element
}

func NewServiceRequestPage(page interfaces.Page, actions *secure.Actions) *ServiceRequestPage {
	return &ServiceRequestPage{
		page:    page,
		actions: actions,

		OpenButton: page.Locate(interfaces.CSS("#service-request-btn")),
		FormTitle:  page.Locate(interfaces.Text("Pedido de serviço")),
		Cancel:     page.Locate(interfaces.Role("button", "Cancelar")),
		SubmitBtn:  page.Locate(interfaces.Role("button", "Enviar")),

		SuccessModal:      page.Locate(interfaces.CSS(`div[role="dialog"]`)),
		SuccessModalTitle: page.Locate(interfaces.Text("Solicitação enviada")),
		SuccessModalClose: page.Locate(
			interfaces.CSS(`div[role="dialog"] button[aria-label*="close" i], div[role="dialog"] button[aria-label*="fechar" i]`).
				Or(interfaces.CSS(`div[role="dialog"] button`)),
		),

		OrganisationSection: page.Locate(interfaces.Text("Dados da Organização")),
		RegistrationSection: page.Locate(interfaces.Text("Dados de Registo")),
		BillingSection:      page.Locate(interfaces.Text("Faturação")),
		DetailsSection:      page.Locate(interfaces.Text("Detalhes")),
		CPESection:          page.Locate(interfaces.Text("CPE's")),
		OtherInfoSection:    page.Locate(interfaces.Text("Outras Informações")),
	}
}

// OpenForm clicks "Pedido de serviço" and waits for the page load to finish.
func (p *ServiceRequestPage) OpenForm(ctx context.Context, parent *steps.Step) error {
	if err := p.actions.Click(ctx, parent, p.OpenButton, "Pedido de serviço button"); err != nil {
		return err
	}
	return p.page.WaitForLoadState(ctx, interfaces.LoadStateLoad, formLoadTimeout)
}

// AcceptTerms checks the terms-of-agreement checkbox. A missing checkbox is
// reported as ElementNotFoundError.
func (p *ServiceRequestPage) AcceptTerms(ctx context.Context) error {
	var found bool
	if err := p.page.Evaluate(ctx, acceptTermsJS, &found); err != nil {
		return err
	}
	if !found {
		return &models.ElementNotFoundError{Selector: "#" + termsCheckboxID}
	}
	return p.page.Settle(ctx, termsSettle)
}

// Submit clicks "Enviar".
func (p *ServiceRequestPage) Submit(ctx context.Context, parent *steps.Step) error {
	return p.actions.Click(ctx, parent, p.SubmitBtn, "botão Enviar")
}

// CancelForm clicks "Cancelar".
func (p *ServiceRequestPage) CancelForm(ctx context.Context, parent *steps.Step) error {
	return p.actions.Click(ctx, parent, p.Cancel, "botão Cancelar")
}

// Sections returns the form's accordion headers in page order.
func (p *ServiceRequestPage) Sections() []interfaces.Element {
	return []interfaces.Element{
		p.OrganisationSection,
		p.RegistrationSection,
		p.BillingSection,
		p.DetailsSection,
		p.CPESection,
		p.OtherInfoSection,
	}
}

// WaitForSuccessModal waits for the confirmation title to become visible.
func (p *ServiceRequestPage) WaitForSuccessModal(ctx context.Context) error {
	return p.SuccessModalTitle.WaitFor(ctx, interfaces.StateVisible, successModalTimeout)
}

// CloseSuccessModal clicks the dialog's close control.
func (p *ServiceRequestPage) CloseSuccessModal(ctx context.Context, parent *steps.Step) error {
	return p.actions.Click(ctx, parent, p.SuccessModalClose, "botão fechar modal")
}
