package services

import "errors"

var (
	// ErrUnreconcilable means a provider event references no local record.
	// Surfaced as a 404 so the delivery is visible for investigation instead
	// of being silently dropped.
	ErrUnreconcilable = errors.New("event cannot be reconciled to a local record")

	// ErrNotFound is returned when a caller-supplied entity id resolves to
	// nothing within the caller's tenant.
	ErrNotFound = errors.New("record not found")

	// ErrIntegrationNotConfigured means the tenant has no usable provider
	// credential.
	ErrIntegrationNotConfigured = errors.New("payment integration is not configured for this tenant")
)
