package services

import (
	"math"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/google/uuid"
)

// CommissionService resolves the platform take-rate for a tenant at a point
// in time and records fees on collected payments.
type CommissionService struct {
	store       repository.Store
	defaultRate float64
}

func NewCommissionService(store repository.Store, defaultRate float64) *CommissionService {
	return &CommissionService{store: store, defaultRate: defaultRate}
}

// RateFor returns the take-rate (a fraction, e.g. 0.05 for 5%) effective for
// the tenant at the given instant: the newest dated rate row not in the
// future, else the platform default.
func (s *CommissionService) RateFor(tenantID uuid.UUID, at time.Time) (float64, error) {
	r, err := s.store.CommissionRateFor(tenantID, at)
	if err != nil {
		return 0, err
	}
	if r == nil {
		return s.defaultRate, nil
	}
	return r.Rate, nil
}

// FeeCents computes the platform fee for a transaction amount.
func FeeCents(amountCents int64, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(math.Round(float64(amountCents) * rate))
}

// RecordFee inserts at most one fee record for the payment. Returns whether a
// row was created; a zero rate records nothing.
func (s *CommissionService) RecordFee(tenantID, paymentID uuid.UUID, amountCents int64, at time.Time) (bool, error) {
	rate, err := s.RateFor(tenantID, at)
	if err != nil {
		return false, err
	}
	if rate <= 0 {
		return false, nil
	}

	fee := &models.CommissionFee{
		TenantID:               tenantID,
		PaymentID:              paymentID,
		TransactionAmountCents: amountCents,
		CommissionRate:         rate,
		FeeAmountCents:         FeeCents(amountCents, rate),
	}
	return s.store.CreateCommissionFeeIfAbsent(fee)
}
