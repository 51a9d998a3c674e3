package scenario

import (
	"context"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/pages"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

const (
	OpportunitySuite      = "Backoffice Opportunities"
	OpportunityScenario   = "Criar oportunidade (fluxo completo) - Login e criação com sucesso"
	CancelRequestScenario = "Cancelar pedido de serviço - Login e cancelamento do formulário"

	// SuccessMessage is shown in the confirmation dialog after submitting a request.
	SuccessMessage = "Vai receber um contacto da equipa do Turn Green"
)

type journey struct {
	d       Deps
	service *pages.ServicePage
	login   *pages.FusionAuthLoginPage
	request *pages.ServiceRequestPage
}

func newJourney(d Deps) *journey {
	return &journey{
		d:       d,
		service: pages.NewServicePage(d.Page, d.Logger, d.BaseURL, d.ServicePath),
		login:   pages.NewFusionAuthLoginPage(d.Page, d.Actions),
		request: pages.NewServiceRequestPage(d.Page, d.Actions),
	}
}

func (j *journey) settle(ctx context.Context, delay time.Duration) error {
	return j.d.Page.Settle(ctx, delay)
}

// loginSteps take the browser from the landing page through FusionAuth and
// back to the QA service page.
func (j *journey) loginSteps() []Step {
	return []Step{
		{Name: "Navegar para página Energia Solar", Run: func(ctx context.Context, s *steps.Step) error {
			return j.service.Goto(ctx)
		}},
		{Name: "Clicar no botão Login", Run: func(ctx context.Context, s *steps.Step) error {
			_, err := j.service.ClickLogin(ctx)
			return err
		}},
		{Name: "Realizar login com FusionAuth", Run: func(ctx context.Context, s *steps.Step) error {
			return j.login.Login(ctx, s, j.d.Credentials.Email, j.d.Credentials.Password)
		}},
		{Name: "Aguardar confirmação de login", Run: func(ctx context.Context, s *steps.Step) error {
			return j.service.WaitUntilLoggedIn(ctx)
		}},
		{Name: "Navegar para página QA Service", Run: func(ctx context.Context, s *steps.Step) error {
			if err := j.service.Goto(ctx); err != nil {
				return err
			}
			return j.settle(ctx, 5*time.Second)
		}},
		{Name: "Validar que estamos na página QA Service", Run: func(ctx context.Context, s *steps.Step) error {
			return ExpectVisible(ctx, j.service.Heading, j.d.expectTimeout())
		}},
	}
}

func (j *journey) openFormSteps() []Step {
	return []Step{
		{Name: `Clicar no botão "Pedido de serviço"`, Run: func(ctx context.Context, s *steps.Step) error {
			if err := j.request.OpenForm(ctx, s); err != nil {
				return err
			}
			return j.settle(ctx, 2*time.Second)
		}},
		{Name: "Validar que o formulário está visível", Run: func(ctx context.Context, s *steps.Step) error {
			if err := ExpectVisible(ctx, j.request.FormTitle, j.d.expectTimeout()); err != nil {
				return err
			}
			return ExpectVisible(ctx, j.request.OrganisationSection, j.d.expectTimeout())
		}},
	}
}

func (j *journey) backOnServicePage() Step {
	return Step{Name: "Validar retorno à página QA Service", Run: func(ctx context.Context, s *steps.Step) error {
		return ExpectVisible(ctx, j.service.Heading, j.d.expectTimeout())
	}}
}

// NewOpportunity builds the full service-request journey.
func NewOpportunity(d Deps) *Scenario {
	j := newJourney(d)

	var all []Step
	all = append(all, j.loginSteps()...)
	all = append(all, j.openFormSteps()...)
	all = append(all,
		Step{Name: "Aceitar termos e condições", Run: func(ctx context.Context, s *steps.Step) error {
			if err := j.request.AcceptTerms(ctx); err != nil {
				return err
			}
			return j.settle(ctx, 500*time.Millisecond)
		}},
		Step{Name: "Clicar no botão Enviar", Run: func(ctx context.Context, s *steps.Step) error {
			return j.request.Submit(ctx, s)
		}},
		Step{Name: "Validar modal de sucesso", Run: func(ctx context.Context, s *steps.Step) error {
			if err := j.request.WaitForSuccessModal(ctx); err != nil {
				return err
			}
			if err := ExpectVisible(ctx, j.request.SuccessModalTitle, j.d.expectTimeout()); err != nil {
				return err
			}
			return ExpectContainsText(ctx, j.request.SuccessModal, SuccessMessage, j.d.expectTimeout())
		}},
		Step{Name: "Fechar modal de sucesso", Run: func(ctx context.Context, s *steps.Step) error {
			if err := j.request.CloseSuccessModal(ctx, s); err != nil {
				return err
			}
			return j.settle(ctx, time.Second)
		}},
		j.backOnServicePage(),
	)

	return &Scenario{Name: OpportunityScenario, Steps: all}
}

// NewCancelRequest opens the service request form and leaves it with "Cancelar".
func NewCancelRequest(d Deps) *Scenario {
	j := newJourney(d)

	var all []Step
	all = append(all, j.loginSteps()...)
	all = append(all, j.openFormSteps()...)
	all = append(all,
		Step{Name: "Validar secções do formulário", Run: func(ctx context.Context, s *steps.Step) error {
			for _, section := range j.request.Sections() {
				if err := ExpectVisible(ctx, section, j.d.expectTimeout()); err != nil {
					return err
				}
			}
			return nil
		}},
		Step{Name: "Clicar no botão Cancelar", Run: func(ctx context.Context, s *steps.Step) error {
			if err := j.request.CancelForm(ctx, s); err != nil {
				return err
			}
			return j.settle(ctx, time.Second)
		}},
		Step{Name: "Validar que o formulário fechou", Run: func(ctx context.Context, s *steps.Step) error {
			return ExpectHidden(ctx, j.request.FormTitle, j.d.expectTimeout())
		}},
		j.backOnServicePage(),
	)

	return &Scenario{Name: CancelRequestScenario, Steps: all}
}
