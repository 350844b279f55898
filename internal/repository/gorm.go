package repository

import (
	"errors"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func firstOrNil[T any](db *gorm.DB, dest *T) (*T, error) {
	if err := db.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}

func (s *gormStore) GetCredential(tenantID uuid.UUID) (*models.ProviderCredential, error) {
	var c models.ProviderCredential
	return firstOrNil(s.db.Scopes(tenant.ForTenant(tenantID)), &c)
}

func (s *gormStore) ListCredentials() ([]models.ProviderCredential, error) {
	var creds []models.ProviderCredential
	err := s.db.Find(&creds).Error
	return creds, err
}

func (s *gormStore) SaveCredential(c *models.ProviderCredential) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token",
			"refresh_token",
			"public_key",
			"expires_at",
			"updated_at",
		}),
	}).Create(c).Error
}

func (s *gormStore) GetTenantSettings(tenantID uuid.UUID) (*models.TenantSettings, error) {
	var ts models.TenantSettings
	return firstOrNil(s.db.Scopes(tenant.ForTenant(tenantID)), &ts)
}

func (s *gormStore) GetActiveChannel(tenantID uuid.UUID) (*models.MessagingChannel, error) {
	var ch models.MessagingChannel
	return firstOrNil(s.db.Scopes(tenant.ForTenant(tenantID)).Where("active = ?", true), &ch)
}

func (s *gormStore) GetPayment(id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	return firstOrNil(s.db.Where("id = ?", id), &p)
}

func (s *gormStore) FindPaymentByBooking(bookingID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	return firstOrNil(s.db.Where("booking_id = ?", bookingID).Order("created_at DESC"), &p)
}

func (s *gormStore) FindPendingPaymentForBooking(tenantID, bookingID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	return firstOrNil(
		s.db.Scopes(tenant.ForTenant(tenantID)).
			Where("booking_id = ? AND status = ?", bookingID, models.PaymentStatusPending),
		&p,
	)
}

func (s *gormStore) FindPendingPaymentForPackage(tenantID, packageID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	return firstOrNil(
		s.db.Scopes(tenant.ForTenant(tenantID)).
			Where("customer_package_id = ? AND status = ?", packageID, models.PaymentStatusPending),
		&p,
	)
}

func (s *gormStore) CreatePayment(p *models.Payment) error {
	return s.db.Create(p).Error
}

func (s *gormStore) UpdatePayment(id uuid.UUID, updates map[string]interface{}) error {
	return s.db.Model(&models.Payment{}).Where("id = ?", id).Updates(updates).Error
}

func (s *gormStore) GetBooking(id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	return firstOrNil(s.db.Where("id = ?", id), &b)
}

func (s *gormStore) UpdateBookingStatus(id uuid.UUID, status string) error {
	return s.db.Model(&models.Booking{}).Where("id = ?", id).Update("status", status).Error
}

// HasBookingConflict reports whether another live booking occupies the same
// staff/time window.
func (s *gormStore) HasBookingConflict(b *models.Booking) (bool, error) {
	var count int64
	err := s.db.Model(&models.Booking{}).
		Scopes(tenant.ForTenant(b.TenantID)).
		Where("id <> ? AND staff_id = ?", b.ID, b.StaffID).
		Where("status IN ?", []string{models.BookingStatusPending, models.BookingStatusAwaitingPayment, models.BookingStatusConfirmed}).
		Where("starts_at < ? AND ends_at > ?", b.EndsAt, b.StartsAt).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) GetCustomer(id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	return firstOrNil(s.db.Where("id = ?", id), &c)
}

func (s *gormStore) GetService(id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	return firstOrNil(s.db.Where("id = ?", id), &svc)
}

func (s *gormStore) GetCustomerPackage(id uuid.UUID) (*models.CustomerPackage, error) {
	var cp models.CustomerPackage
	return firstOrNil(s.db.Where("id = ?", id), &cp)
}

func (s *gormStore) UpdateCustomerPackage(id uuid.UUID, updates map[string]interface{}) error {
	return s.db.Model(&models.CustomerPackage{}).Where("id = ?", id).Updates(updates).Error
}

func (s *gormStore) GetPlan(id uuid.UUID) (*models.Plan, error) {
	var p models.Plan
	return firstOrNil(s.db.Where("id = ?", id), &p)
}

func (s *gormStore) ListPlanItems(planID uuid.UUID) ([]models.PlanItem, error) {
	var items []models.PlanItem
	err := s.db.Where("plan_id = ?", planID).Find(&items).Error
	return items, err
}

func (s *gormStore) GetSubscription(id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	return firstOrNil(s.db.Where("id = ?", id), &sub)
}

func (s *gormStore) FindSubscriptionByProviderID(providerSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	return firstOrNil(s.db.Where("provider_subscription_id = ?", providerSubscriptionID), &sub)
}

func (s *gormStore) CreateSubscription(sub *models.Subscription) error {
	return s.db.Create(sub).Error
}

func (s *gormStore) UpdateSubscription(id uuid.UUID, updates map[string]interface{}) error {
	return s.db.Model(&models.Subscription{}).Where("id = ?", id).Updates(updates).Error
}

func (s *gormStore) ListSubscriptionsByStatus(status string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.Where("status = ?", status).Find(&subs).Error
	return subs, err
}

// UpsertUsage seeds one (subscription, service, period) row. Conflicts keep
// the existing row so re-running a resume or renewal never resets counters.
func (s *gormStore) UpsertUsage(u *models.SubscriptionUsage) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subscription_id"},
			{Name: "service_id"},
			{Name: "period_start"},
		},
		DoNothing: true,
	}).Create(u).Error
}

func (s *gormStore) HasCashEntryWithRef(tenantID uuid.UUID, source, refToken string) (bool, error) {
	var count int64
	err := s.db.Model(&models.CashEntry{}).
		Scopes(tenant.ForTenant(tenantID)).
		Where("source = ? AND notes LIKE ?", source, "%"+refToken+"%").
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) CreateCashEntry(e *models.CashEntry) error {
	return s.db.Create(e).Error
}

func (s *gormStore) CommissionRateFor(tenantID uuid.UUID, at time.Time) (*models.CommissionRate, error) {
	var r models.CommissionRate
	return firstOrNil(
		s.db.Scopes(tenant.ForTenant(tenantID)).
			Where("effective_from <= ?", at).
			Order("effective_from DESC"),
		&r,
	)
}

func (s *gormStore) CreateCommissionFeeIfAbsent(f *models.CommissionFee) (bool, error) {
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoNothing: true,
	}).Create(f)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (s *gormStore) NotificationExists(dedupKey string) (bool, error) {
	var count int64
	err := s.db.Model(&models.NotificationLog{}).
		Where("dedup_key = ?", dedupKey).
		Count(&count).Error
	return count > 0, err
}

// UpsertNotificationLog records a dedup key; concurrent sends for the same
// key converge to one row.
func (s *gormStore) UpsertNotificationLog(n *models.NotificationLog) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(n).Error
}
