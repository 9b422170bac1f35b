package types

type CheckoutMode string

const (
	CheckoutModeSubscription CheckoutMode = "subscription"
	CheckoutModePayment      CheckoutMode = "payment"
)

// PriceItem maps a purchasable product to its Stripe price.
type PriceItem struct {
	// Personality is the personality name unlocked by a one-time purchase.
	Personality     string `json:"personality" mapstructure:"personality"`
	ProviderPriceID string `json:"provider_price_id" mapstructure:"provider_price_id"`
}

func (item *PriceItem) Configured() bool {
	return item != nil && item.ProviderPriceID != ""
}
