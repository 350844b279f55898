package dto

// ProviderWebhook is the provider's callback body. The payload is only a
// pointer: the handler re-fetches the referenced object with a locally held
// credential before trusting anything in it.
type ProviderWebhook struct {
	Type     string              `json:"type"`
	Action   string              `json:"action"`
	LiveMode bool                `json:"live_mode"`
	Data     ProviderWebhookData `json:"data"`
}

type ProviderWebhookData struct {
	ID string `json:"id"`
}
