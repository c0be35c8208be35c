package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/printorder/internal/domain"
)

type CheckoutUC struct {
	Store domain.KVStore
}

// CheckoutSession is the state of one checkout page.
type CheckoutSession struct {
	State  domain.CheckoutState
	Record domain.CheckoutRecord
	Form   domain.CheckoutForm
}

func NewCheckoutSession() *CheckoutSession {
	return &CheckoutSession{State: domain.CheckoutLoading, Form: domain.CheckoutForm{Buyer: domain.BuyerInfo{}.WithDefaults()}}
}

// Totals is only defined once the session is ready.
func (s *CheckoutSession) Totals() (domain.Totals, bool) {
	if s.State != domain.CheckoutReady {
		return domain.Totals{}, false
	}
	return s.Record.Totals(), true
}

// Mount reads the checkout slot and leaves Loading. Missing, unreadable or
// empty records all end in Empty.
func (uc *CheckoutUC) Mount(ctx context.Context) *CheckoutSession {
	s := NewCheckoutSession()
	raw, err := uc.Store.Get(ctx, domain.KeyCheckout)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Msg("read checkout, treating as empty")
		}
		s.State = domain.CheckoutEmpty
		return s
	}
	rec, ok := domain.ParseCheckoutRecord(raw)
	if !ok {
		log.Warn().Msg("unreadable checkout record, treating as empty")
		s.State = domain.CheckoutEmpty
		return s
	}
	if len(rec.Products) == 0 {
		s.State = domain.CheckoutEmpty
		return s
	}
	s.Record = rec
	s.State = domain.CheckoutReady
	return s
}

// Submit validates the form and, when clean, clears the checkout slot and
// returns the outcome path. Validation failures return ErrValidation with
// s.Form.Errors filled.
func (uc *CheckoutUC) Submit(ctx context.Context, s *CheckoutSession) (string, error) {
	if s == nil || s.State != domain.CheckoutReady {
		return "", domain.ErrEmptyOrder
	}
	if !s.Form.Validate() {
		return "", domain.ErrValidation
	}
	if err := uc.Store.Remove(ctx, domain.KeyCheckout); err != nil {
		return "", fmt.Errorf("clear checkout: %w", err)
	}
	return domain.OutcomePath(s.Form.Buyer.PaymentMethod), nil
}
