package stripe

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"

	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
)

// Client wraps the Stripe API. The underlying *client.API is built on first
// use so the process starts even when payments are not configured.
type Client struct {
	cfg      cfgpkg.StripeConfig
	log      *zap.SugaredLogger
	validate *validator.Validate
	// backends overrides the API endpoint; nil means api.stripe.com.
	backends *stripelib.Backends

	mu  sync.Mutex
	api *client.API
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg.Stripe, log: log, validate: validator.New()}
}

// WithBackendURL points the client at another API host, used by tests.
func (c *Client) WithBackendURL(url string) *Client {
	backend := stripelib.GetBackendWithConfig(stripelib.APIBackend, &stripelib.BackendConfig{
		URL:               stripelib.String(url),
		MaxNetworkRetries: stripelib.Int64(0),
		LeveledLogger:     &stripelib.LeveledLogger{Level: stripelib.LevelNull},
	})
	c.backends = &stripelib.Backends{API: backend, Connect: backend, Uploads: backend}
	return c
}

func (c *Client) ensure() (*client.API, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}
	c.cfg.SecretKey = strings.TrimSpace(c.cfg.SecretKey)
	if err := c.validate.Struct(c.cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	c.api = client.New(c.cfg.SecretKey, c.backends)
	c.log.Infow("stripe_client_initialized")
	return c.api, nil
}

type CheckoutMode string

const (
	CheckoutModeSubscription CheckoutMode = "subscription"
	CheckoutModePayment      CheckoutMode = "payment"
)

type CheckoutSessionInput struct {
	Mode       CheckoutMode
	PriceID    string
	SuccessURL string
	CancelURL  string
	// Metadata is attached to the session; SubscriptionMetadata to the
	// subscription it creates (subscription mode only).
	Metadata             map[string]string
	SubscriptionMetadata map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

func (c *Client) CreateCheckoutSession(ctx context.Context, in *CheckoutSessionInput) (*CheckoutSession, error) {
	api, err := c.ensure()
	if err != nil {
		return nil, err
	}
	params := &stripelib.CheckoutSessionParams{
		Mode:               stripelib.String(string(in.Mode)),
		PaymentMethodTypes: stripelib.StringSlice([]string{"card"}),
		SuccessURL:         stripelib.String(in.SuccessURL),
		CancelURL:          stripelib.String(in.CancelURL),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{Price: stripelib.String(in.PriceID), Quantity: stripelib.Int64(1)},
		},
		Metadata: in.Metadata,
	}
	if in.Mode == CheckoutModeSubscription && len(in.SubscriptionMetadata) > 0 {
		params.SubscriptionData = &stripelib.CheckoutSessionSubscriptionDataParams{Metadata: in.SubscriptionMetadata}
	}
	params.Context = ctx

	session, err := api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("stripe returned empty checkout URL")
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// Subscription is the subset of a provider subscription the billing flow reads.
// Period bounds are epoch seconds exactly as Stripe reports them.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	Metadata           map[string]string
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
}

func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	api, err := c.ensure()
	if err != nil {
		return nil, err
	}
	params := &stripelib.SubscriptionParams{}
	params.Context = ctx
	sub, err := api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", id, err)
	}
	return fromStripeSubscription(sub), nil
}

func fromStripeSubscription(sub *stripelib.Subscription) *Subscription {
	out := &Subscription{
		ID:       sub.ID,
		Status:   string(sub.Status),
		Metadata: sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	// Since the 2025-03-31 API version the billing period lives on the items.
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil {
				continue
			}
			if out.CurrentPeriodStart == 0 || item.CurrentPeriodStart < out.CurrentPeriodStart {
				out.CurrentPeriodStart = item.CurrentPeriodStart
			}
			if item.CurrentPeriodEnd > out.CurrentPeriodEnd {
				out.CurrentPeriodEnd = item.CurrentPeriodEnd
			}
		}
	}
	return out
}

// GetCustomerMetadata returns the metadata of a customer; deleted customers yield nil.
func (c *Client) GetCustomerMetadata(ctx context.Context, customerID string) (map[string]string, error) {
	api, err := c.ensure()
	if err != nil {
		return nil, err
	}
	params := &stripelib.CustomerParams{}
	params.Context = ctx
	cust, err := api.Customers.Get(customerID, params)
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", customerID, err)
	}
	if cust.Deleted {
		return nil, nil
	}
	return cust.Metadata, nil
}
