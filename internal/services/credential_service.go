package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/provider"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/google/uuid"
)

// Tokens are refreshed ahead of expiry so in-flight work never races the
// expiry instant.
const tokenRefreshBuffer = 30 * time.Minute

// TenantToken is a usable provider credential resolved for one tenant.
type TenantToken struct {
	TenantID    uuid.UUID
	AccessToken string
	PublicKey   string
}

type CredentialService struct {
	store repository.Store
	api   provider.API
}

func NewCredentialService(store repository.Store, api provider.API) *CredentialService {
	return &CredentialService{store: store, api: api}
}

// GetValidToken resolves a tenant's provider token, refreshing it when it is
// within the buffer window of expiry. Returns (nil, nil) when the tenant has
// no integration configured or the token expired and cannot be refreshed;
// callers treat both as "cannot charge this tenant right now", not an error.
func (s *CredentialService) GetValidToken(ctx context.Context, tenantID uuid.UUID) (*TenantToken, error) {
	cred, err := s.store.GetCredential(tenantID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, nil
	}

	now := time.Now()
	if cred.ExpiresAt != nil && now.After(cred.ExpiresAt.Add(-tokenRefreshBuffer)) {
		return s.refresh(ctx, cred, now), nil
	}
	return tokenFrom(cred), nil
}

// refresh is fetch-then-write: a failed persist after a successful provider
// refresh still returns the fresh in-memory token so the current operation
// can proceed; the write failure is logged for operational follow-up.
func (s *CredentialService) refresh(ctx context.Context, cred *models.ProviderCredential, now time.Time) *TenantToken {
	expired := cred.ExpiresAt != nil && now.After(*cred.ExpiresAt)

	if cred.RefreshToken == "" {
		if expired {
			slog.Warn("provider token expired and no refresh token stored", "tenant_id", cred.TenantID)
			return nil
		}
		return tokenFrom(cred)
	}

	tok, err := s.api.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		if !expired {
			// Favor availability: the old token is still technically valid.
			slog.Warn("token refresh failed, serving unexpired token", "tenant_id", cred.TenantID, "error", err)
			return tokenFrom(cred)
		}
		slog.Warn("token refresh failed for expired token", "tenant_id", cred.TenantID, "error", err)
		return nil
	}

	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	if tok.PublicKey != "" {
		cred.PublicKey = tok.PublicKey
	}
	if tok.ExpiresIn > 0 {
		exp := now.Add(time.Duration(tok.ExpiresIn) * time.Second)
		cred.ExpiresAt = &exp
	}

	if err := s.store.SaveCredential(cred); err != nil {
		slog.Error("failed to persist refreshed provider token", "tenant_id", cred.TenantID, "error", err)
	}
	return tokenFrom(cred)
}

// ValidTokens resolves every tenant credential that currently yields a usable
// token. Used by the shared webhook endpoint, which discovers the owning
// tenant by trial-fetching with each token.
func (s *CredentialService) ValidTokens(ctx context.Context) ([]TenantToken, error) {
	creds, err := s.store.ListCredentials()
	if err != nil {
		return nil, err
	}

	tokens := make([]TenantToken, 0, len(creds))
	for i := range creds {
		tok, err := s.GetValidToken(ctx, creds[i].TenantID)
		if err != nil {
			slog.Warn("skipping tenant credential", "tenant_id", creds[i].TenantID, "error", err)
			continue
		}
		if tok != nil {
			tokens = append(tokens, *tok)
		}
	}
	return tokens, nil
}

func tokenFrom(cred *models.ProviderCredential) *TenantToken {
	return &TenantToken{
		TenantID:    cred.TenantID,
		AccessToken: cred.AccessToken,
		PublicKey:   cred.PublicKey,
	}
}
