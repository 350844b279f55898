package provider

import "time"

// TokenResponse is the provider OAuth token endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	PublicKey    string `json:"public_key"`
}

// Payment is the provider's authoritative payment object, re-fetched on every
// webhook before any local state changes.
type Payment struct {
	ID                string                 `json:"id"`
	Status            string                 `json:"status"`
	StatusDetail      string                 `json:"status_detail"`
	TransactionAmount float64                `json:"transaction_amount"`
	CurrencyID        string                 `json:"currency_id"`
	ExternalReference string                 `json:"external_reference"`
	Metadata          map[string]interface{} `json:"metadata"`
	DateApproved      *time.Time             `json:"date_approved"`
}

// Preference is a hosted checkout intent for a one-off charge.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type PreferenceRequest struct {
	ExternalReference   string
	Title               string
	AmountCents         int64
	Currency            string
	MarketplaceFeeCents int64
	ExpiresAt           time.Time
	InternalPaymentID   string
}

// Preapproval is a recurring charge authorization (subscription).
type Preapproval struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	ExternalReference string     `json:"external_reference"`
	InitPoint         string     `json:"init_point"`
	Reason            string     `json:"reason"`
	NextPaymentDate   *time.Time `json:"next_payment_date"`
}

type PreapprovalRequest struct {
	ExternalReference string
	Reason            string
	PayerEmail        string
	AmountCents       int64
	Currency          string
	FrequencyMonths   int
}

// AuthorizedPayment is one recurring charge made under a preapproval.
type AuthorizedPayment struct {
	ID                string     `json:"id"`
	PreapprovalID     string     `json:"preapproval_id"`
	Status            string     `json:"status"`
	TransactionAmount float64    `json:"transaction_amount"`
	CurrencyID        string     `json:"currency_id"`
	DebitDate         *time.Time `json:"debit_date"`
}
