package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/academy-automation/internal/config"
	"github.com/nurpe/academy-automation/internal/model"
)

type ClientStore interface {
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
}

var hundred = decimal.NewFromInt(100)

type BillingService struct {
	clients    ClientStore
	excessRate decimal.Decimal
	log        zerolog.Logger
}

func NewBillingService(clients ClientStore, cfg config.BillingConfig, log zerolog.Logger) (*BillingService, error) {
	percent, err := decimal.NewFromString(strings.TrimSpace(cfg.ExcessPercent))
	if err != nil {
		return nil, fmt.Errorf("invalid excess percent %q: %w", cfg.ExcessPercent, err)
	}
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return nil, fmt.Errorf("excess percent must be between 0 and 100, got %s", percent)
	}
	return &BillingService{
		clients:    clients,
		excessRate: percent.Div(hundred),
		log:        log.With().Str("component", "billing").Logger(),
	}, nil
}

// ComputeSplit divides an invoice between the client's excess and the
// insurer's claim. Only Insurance clients get a split; a missing client or a
// failed lookup yields the non-insurance result instead of an error.
func (s *BillingService) ComputeSplit(ctx context.Context, input model.SplitInput) (model.InvoiceSplit, error) {
	if input.ClientID == uuid.Nil {
		return model.InvoiceSplit{}, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}

	subtotal := parseAmount(input.PartsTotal).Add(parseAmount(input.LaborTotal))
	tax := subtotal.Mul(parseAmount(input.TaxRate)).Div(hundred)
	total := subtotal.Add(tax).Round(2)
	// Reported tax absorbs the rounding so subtotal + tax == total.
	shownSubtotal := subtotal.Round(2)
	shownTax := total.Sub(shownSubtotal)

	split := model.InvoiceSplit{
		InsuranceExcess:      "0",
		InsuranceClaimAmount: "0",
		Subtotal:             shownSubtotal.StringFixed(2),
		Tax:                  shownTax.StringFixed(2),
		Total:                total.StringFixed(2),
	}

	client, err := s.clients.GetClient(ctx, input.ClientID)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("client_id", input.ClientID.String()).
			Msg("client lookup failed, billing as non-insurance")
		return split, nil
	}
	if client == nil || !client.IsInsurance() {
		return split, nil
	}

	excess := subtotal.Mul(s.excessRate).Round(2)
	claim := total.Sub(excess)

	split.IsInsuranceJob = true
	split.InsuranceExcess = excess.StringFixed(2)
	split.InsuranceClaimAmount = claim.StringFixed(2)
	return split, nil
}

// parseAmount reads a decimal string; empty or malformed input counts as zero.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}
