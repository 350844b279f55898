package repository

import (
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence surface of the reconciliation core. Lookups return
// (nil, nil) when no row exists; callers decide whether absence is an error.
type Store interface {
	// Provider credentials
	GetCredential(tenantID uuid.UUID) (*models.ProviderCredential, error)
	ListCredentials() ([]models.ProviderCredential, error)
	SaveCredential(c *models.ProviderCredential) error

	// Tenant settings and messaging channels
	GetTenantSettings(tenantID uuid.UUID) (*models.TenantSettings, error)
	GetActiveChannel(tenantID uuid.UUID) (*models.MessagingChannel, error)

	// Payments
	GetPayment(id uuid.UUID) (*models.Payment, error)
	FindPaymentByBooking(bookingID uuid.UUID) (*models.Payment, error)
	FindPendingPaymentForBooking(tenantID, bookingID uuid.UUID) (*models.Payment, error)
	FindPendingPaymentForPackage(tenantID, packageID uuid.UUID) (*models.Payment, error)
	CreatePayment(p *models.Payment) error
	UpdatePayment(id uuid.UUID, updates map[string]interface{}) error

	// Bookings
	GetBooking(id uuid.UUID) (*models.Booking, error)
	UpdateBookingStatus(id uuid.UUID, status string) error
	HasBookingConflict(b *models.Booking) (bool, error)

	// Catalog
	GetCustomer(id uuid.UUID) (*models.Customer, error)
	GetService(id uuid.UUID) (*models.Service, error)
	GetCustomerPackage(id uuid.UUID) (*models.CustomerPackage, error)
	UpdateCustomerPackage(id uuid.UUID, updates map[string]interface{}) error
	GetPlan(id uuid.UUID) (*models.Plan, error)
	ListPlanItems(planID uuid.UUID) ([]models.PlanItem, error)

	// Subscriptions
	GetSubscription(id uuid.UUID) (*models.Subscription, error)
	FindSubscriptionByProviderID(providerSubscriptionID string) (*models.Subscription, error)
	CreateSubscription(s *models.Subscription) error
	UpdateSubscription(id uuid.UUID, updates map[string]interface{}) error
	ListSubscriptionsByStatus(status string) ([]models.Subscription, error)
	UpsertUsage(u *models.SubscriptionUsage) error

	// Ledger and commission
	HasCashEntryWithRef(tenantID uuid.UUID, source, refToken string) (bool, error)
	CreateCashEntry(e *models.CashEntry) error
	CommissionRateFor(tenantID uuid.UUID, at time.Time) (*models.CommissionRate, error)
	CreateCommissionFeeIfAbsent(f *models.CommissionFee) (bool, error)

	// Notification dedup ledger
	NotificationExists(dedupKey string) (bool, error)
	UpsertNotificationLog(n *models.NotificationLog) error
}
