package billing

import (
	"bytes"
	"encoding/json"

	"github.com/rotbot/rotbot-api/internal/app/service/subscription"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
)

// EventKind is the closed set of webhook events the reconciler acts on.
type EventKind int

const (
	EventUnhandled EventKind = iota
	EventCheckoutSessionCompleted
	EventSubscriptionUpdated
	EventSubscriptionDeleted
	EventInvoicePaymentSucceeded
	EventInvoicePaymentFailed
)

var eventKinds = map[string]EventKind{
	"checkout.session.completed":    EventCheckoutSessionCompleted,
	"customer.subscription.updated": EventSubscriptionUpdated,
	"customer.subscription.deleted": EventSubscriptionDeleted,
	"invoice.payment_succeeded":     EventInvoicePaymentSucceeded,
	"invoice.payment_failed":        EventInvoicePaymentFailed,
}

// ClassifyEventType maps a provider event type string; anything unknown is EventUnhandled.
func ClassifyEventType(t string) EventKind {
	if k, ok := eventKinds[t]; ok {
		return k
	}
	return EventUnhandled
}

func (k EventKind) String() string {
	switch k {
	case EventCheckoutSessionCompleted:
		return "checkout_session_completed"
	case EventSubscriptionUpdated:
		return "subscription_updated"
	case EventSubscriptionDeleted:
		return "subscription_deleted"
	case EventInvoicePaymentSucceeded:
		return "invoice_payment_succeeded"
	case EventInvoicePaymentFailed:
		return "invoice_payment_failed"
	}
	return "unhandled"
}

// Event is a verified webhook delivery decoded at the boundary.
type Event struct {
	ID   string
	Type string
	Kind EventKind
	// Created is the provider event creation time in epoch seconds.
	Created int64
	Object  json.RawMessage
}

func NewEvent(v *stripeplatform.Event) *Event {
	return &Event{
		ID:      v.ID,
		Type:    v.Type,
		Kind:    ClassifyEventType(v.Type),
		Created: v.Created,
		Object:  v.Object,
	}
}

// expandableID accepts either an id string or an expanded object carrying an id.
type expandableID string

func (e *expandableID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = expandableID(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*e = expandableID(obj.ID)
	return nil
}

type checkoutSessionObject struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	Customer          expandableID      `json:"customer"`
	Subscription      expandableID      `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Customer expandableID      `json:"customer"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
	// Set by API versions before 2025-03-31.
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
}

func (o *subscriptionObject) snapshot() subscription.Snapshot {
	s := subscription.Snapshot{
		ID:                 o.ID,
		CustomerID:         string(o.Customer),
		Status:             o.Status,
		CurrentPeriodStart: o.CurrentPeriodStart,
		CurrentPeriodEnd:   o.CurrentPeriodEnd,
	}
	for i, item := range o.Items.Data {
		if i == 0 || item.CurrentPeriodStart < s.CurrentPeriodStart {
			s.CurrentPeriodStart = item.CurrentPeriodStart
		}
		if item.CurrentPeriodEnd > s.CurrentPeriodEnd {
			s.CurrentPeriodEnd = item.CurrentPeriodEnd
		}
	}
	return s
}

type invoiceObject struct {
	ID            string       `json:"id"`
	BillingReason string       `json:"billing_reason"`
	Customer      expandableID `json:"customer"`
	// Subscription is the pre-2025-03-31 location of the subscription id.
	Subscription expandableID `json:"subscription"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription expandableID      `json:"subscription"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

func (o *invoiceObject) subscriptionID() string {
	if o.Parent != nil && o.Parent.SubscriptionDetails != nil && o.Parent.SubscriptionDetails.Subscription != "" {
		return string(o.Parent.SubscriptionDetails.Subscription)
	}
	return string(o.Subscription)
}

func (o *invoiceObject) subscriptionMetadata() map[string]string {
	if o.Parent != nil && o.Parent.SubscriptionDetails != nil {
		return o.Parent.SubscriptionDetails.Metadata
	}
	return nil
}

func snapshotFromProvider(sub *stripeplatform.Subscription) subscription.Snapshot {
	return subscription.Snapshot{
		ID:                 sub.ID,
		CustomerID:         sub.CustomerID,
		Status:             sub.Status,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
	}
}
