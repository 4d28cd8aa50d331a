package sequence

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	domain "github.com/nordviken/onboarding-backend/internal/domain/consts"
	"github.com/nordviken/onboarding-backend/internal/infra/client/pm"
)

// Orchestrator walks the dependent creation steps against the
// portfolio-management backend. It never retries a step within a run;
// redelivery by the outbox poller re-runs the whole sequence and relies on
// natural-key conflicts (treated as skips) to stay idempotent.
type Orchestrator struct {
	client *pm.Client
}

func NewOrchestrator(client *pm.Client) *Orchestrator {
	return &Orchestrator{client: client}
}

// Run executes the sequence until completion or the first step that is
// neither Success nor Skipped. Steps not reached remain NotExecuted.
func (o *Orchestrator) Run(ctx context.Context, ev *events.OnboardingSubmitted) *Result {
	r := NewResult(ev)

	o.resolveCustomer(ctx, r)
	if !r.CustomerCreation.CanProceed() {
		return r
	}

	if r.PortalUserRegistration != nil {
		r.PortalUserRegistration.Payload.CustomerCode = r.CustomerCode
		applyOutcome(r.PortalUserRegistration, o.client.RegisterPortalUser(ctx, r.PortalUserRegistration.Payload))
		if !r.PortalUserRegistration.CanProceed() {
			return r
		}
	}

	r.AccountCreation.Payload.CustomerCode = r.CustomerCode
	applyOutcome(&r.AccountCreation, o.client.CreateAccount(ctx, r.AccountCreation.Payload))
	if !r.AccountCreation.CanProceed() {
		return r
	}

	r.PortfolioCreation.Payload.CustomerCode = r.CustomerCode
	applyOutcome(&r.PortfolioCreation, o.client.CreatePortfolio(ctx, r.PortfolioCreation.Payload))
	if !r.PortfolioCreation.CanProceed() {
		return r
	}

	o.createSubscriptions(ctx, r)
	for i := range r.SubscriptionCreations {
		if !r.SubscriptionCreations[i].CanProceed() {
			return r
		}
	}

	if r.BankAccountCreation != nil {
		o.createBankAccount(ctx, r)
		if !r.BankAccountCreation.CanProceed() {
			return r
		}
	}

	if r.MandateCreation != nil {
		o.createMandate(ctx, r)
		if !r.MandateCreation.CanProceed() {
			return r
		}
	}

	if len(r.InstructionCreations) > 0 {
		o.createInstructions(ctx, r)
	}

	return r
}

// resolveCustomer looks the customer up by natural id first. An existing
// customer is a skip whose system-assigned code feeds every later payload;
// a create racing another submitter tolerates conflict the same way.
func (o *Orchestrator) resolveCustomer(ctx context.Context, r *Result) {
	lookup := o.client.GetCustomerByNationalID(ctx, r.CustomerCreation.Payload.NationalID)
	switch lookup.Status {
	case pm.StatusSuccess:
		body := lookup.Body
		r.CustomerCreation.Status = consts.StepSkipped
		r.CustomerCreation.StatusCode = lookup.StatusCode
		r.CustomerCreation.SkippedOn = &body
		r.CustomerCode = body.Code
	case pm.StatusNotFound:
		out := o.client.CreateCustomer(ctx, r.CustomerCreation.Payload)
		applyOutcome(&r.CustomerCreation, out)
		if r.CustomerCreation.CanProceed() {
			r.CustomerCode = firstNonEmpty(out.Body.Code, r.CustomerCreation.Payload.Code)
		}
	case pm.StatusAborted:
		r.CustomerCreation.Status = consts.StepAborted
		r.CustomerCreation.StatusCode = lookup.StatusCode
		if lookup.Err != nil {
			r.CustomerCreation.Message = lookup.Err.Error()
		}
	default:
		r.CustomerCreation.Status = consts.StepError
		r.CustomerCreation.StatusCode = lookup.StatusCode
		if lookup.Err != nil {
			r.CustomerCreation.Message = lookup.Err.Error()
		}
	}
}

// createSubscriptions fetches existing subscriptions once, marks payloads
// whose code already exists as skipped without issuing a request, and creates
// the rest concurrently. Siblings run to completion even if one fails.
func (o *Orchestrator) createSubscriptions(ctx context.Context, r *Result) {
	existing := o.client.GetSubscriptions(ctx, r.PortfolioCreation.Payload.Code)
	switch existing.Status {
	case pm.StatusSuccess, pm.StatusNotFound:
	case pm.StatusAborted:
		for i := range r.SubscriptionCreations {
			r.SubscriptionCreations[i].Status = consts.StepAborted
			if existing.Err != nil {
				r.SubscriptionCreations[i].Message = existing.Err.Error()
			}
		}
		return
	default:
		for i := range r.SubscriptionCreations {
			r.SubscriptionCreations[i].Status = consts.StepError
			r.SubscriptionCreations[i].StatusCode = existing.StatusCode
			r.SubscriptionCreations[i].Message = "existing subscriptions could not be fetched"
		}
		return
	}

	known := make(map[string]pm.SubscriptionResponse, len(existing.Body))
	for _, sub := range existing.Body {
		known[sub.Code] = sub
	}

	var wg sync.WaitGroup
	for i := range r.SubscriptionCreations {
		step := &r.SubscriptionCreations[i]
		if found, ok := known[step.Payload.Code]; ok {
			existingSub := found
			step.Status = consts.StepSkipped
			step.SkippedOn = &existingSub
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			applyOutcome(step, o.client.CreateSubscription(ctx, step.Payload))
		}()
	}
	wg.Wait()
}

// createBankAccount tolerates conflict, but a conflicted create must recover
// the existing account's code for the mandate step; failing that re-fetch is
// an error, not a soft skip.
func (o *Orchestrator) createBankAccount(ctx context.Context, r *Result) {
	step := r.BankAccountCreation
	step.Payload.CustomerCode = r.CustomerCode
	out := o.client.CreateBankAccount(ctx, step.Payload)
	applyOutcome(step, out)

	switch step.Status {
	case consts.StepSuccess:
		r.BankAccountCode = out.Body.Code
	case consts.StepSkipped:
		fetched := o.client.GetBankAccount(ctx, r.CustomerCode, step.Payload.AccountCode, step.Payload.ClearingNumber)
		switch {
		case fetched.Status == pm.StatusSuccess && fetched.Body.Code != "":
			body := fetched.Body
			step.SkippedOn = &body
			r.BankAccountCode = body.Code
		case fetched.Status == pm.StatusAborted:
			step.Status = consts.StepAborted
			if fetched.Err != nil {
				step.Message = fetched.Err.Error()
			}
		default:
			step.Status = consts.StepError
			step.Message = "existing bank account could not be fetched after conflict"
			slog.Error("bank account conflict but re-fetch failed",
				"customer", r.CustomerCode, "clearing", step.Payload.ClearingNumber)
		}
	}
}

// createMandate reuses an existing created/active mandate on the resolved
// bank account before attempting a create.
func (o *Orchestrator) createMandate(ctx context.Context, r *Result) {
	step := r.MandateCreation
	step.Payload.BankAccountCode = r.BankAccountCode

	existing := o.client.GetMandates(ctx, r.BankAccountCode)
	switch existing.Status {
	case pm.StatusSuccess:
		for _, mandate := range existing.Body {
			if mandate.Status == domain.MandateStatusCreated || mandate.Status == domain.MandateStatusActive {
				found := mandate
				step.Status = consts.StepSkipped
				step.SkippedOn = &found
				r.MandateCode = found.Code
				return
			}
		}
	case pm.StatusNotFound:
	case pm.StatusAborted:
		step.Status = consts.StepAborted
		if existing.Err != nil {
			step.Message = existing.Err.Error()
		}
		return
	default:
		step.Status = consts.StepError
		step.StatusCode = existing.StatusCode
		step.Message = "existing mandates could not be fetched"
		return
	}

	out := o.client.CreateMandate(ctx, step.Payload)
	applyOutcome(step, out)
	if step.CanProceed() {
		r.MandateCode = firstNonEmpty(out.Body.Code, step.Payload.Code)
	}
}

func (o *Orchestrator) createInstructions(ctx context.Context, r *Result) {
	var wg sync.WaitGroup
	for i := range r.InstructionCreations {
		step := &r.InstructionCreations[i]
		step.Payload.MandateCode = r.MandateCode
		wg.Add(1)
		go func() {
			defer wg.Done()
			applyOutcome(step, o.client.CreateInstruction(ctx, step.Payload))
		}()
	}
	wg.Wait()
}

// applyOutcome is the single place a classified client result turns into a
// step status; conflicts become skips carrying the echoed entity.
func applyOutcome[P any, R any](step *ExecutionResult[P, R], out pm.Result[R]) {
	step.StatusCode = out.StatusCode
	switch out.Status {
	case pm.StatusSuccess:
		body := out.Body
		step.Status = consts.StepSuccess
		step.Response = &body
	case pm.StatusConflict:
		body := out.Body
		step.Status = consts.StepSkipped
		step.SkippedOn = &body
	case pm.StatusAborted:
		step.Status = consts.StepAborted
		if out.Err != nil {
			step.Message = out.Err.Error()
		}
	case pm.StatusFailed:
		step.Status = consts.StepFailed
		if out.Err != nil {
			step.Message = out.Err.Error()
		}
	default:
		step.Status = consts.StepError
		if out.Err != nil {
			step.Message = out.Err.Error()
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
