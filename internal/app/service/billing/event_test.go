package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyEventType(t *testing.T) {
	cases := map[string]EventKind{
		"checkout.session.completed":    EventCheckoutSessionCompleted,
		"customer.subscription.updated": EventSubscriptionUpdated,
		"customer.subscription.deleted": EventSubscriptionDeleted,
		"invoice.payment_succeeded":     EventInvoicePaymentSucceeded,
		"invoice.payment_failed":        EventInvoicePaymentFailed,
		"customer.subscription.created": EventUnhandled,
		"charge.refunded":               EventUnhandled,
		"":                              EventUnhandled,
	}
	for typ, want := range cases {
		require.Equal(t, want, ClassifyEventType(typ), typ)
	}
	require.Equal(t, "unhandled", EventUnhandled.String())
}

func TestExpandableID(t *testing.T) {
	var obj struct {
		A expandableID `json:"a"`
		B expandableID `json:"b"`
		C expandableID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"cus_1","b":{"id":"cus_2","object":"customer"},"c":null}`), &obj))
	require.Equal(t, expandableID("cus_1"), obj.A)
	require.Equal(t, expandableID("cus_2"), obj.B)
	require.Empty(t, obj.C)
}

func TestInvoiceSubscriptionID(t *testing.T) {
	var basil invoiceObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"in_1","parent":{"subscription_details":{"subscription":"sub_new","metadata":{"user_id":"u1"}}}}`), &basil))
	require.Equal(t, "sub_new", basil.subscriptionID())
	require.Equal(t, "u1", basil.subscriptionMetadata()["user_id"])

	var legacy invoiceObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"in_2","subscription":"sub_old"}`), &legacy))
	require.Equal(t, "sub_old", legacy.subscriptionID())
	require.Nil(t, legacy.subscriptionMetadata())
}

func TestSubscriptionObjectSnapshot(t *testing.T) {
	var obj subscriptionObject
	require.NoError(t, json.Unmarshal([]byte(`{
		"id":"sub_1","status":"active","customer":"cus_1",
		"items":{"data":[{"current_period_start":200,"current_period_end":900},{"current_period_start":100,"current_period_end":800}]}
	}`), &obj))
	s := obj.snapshot()
	require.Equal(t, "sub_1", s.ID)
	require.Equal(t, "cus_1", s.CustomerID)
	require.EqualValues(t, 100, s.CurrentPeriodStart)
	require.EqualValues(t, 900, s.CurrentPeriodEnd)

	var legacy subscriptionObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"sub_2","current_period_start":10,"current_period_end":20}`), &legacy))
	require.EqualValues(t, 20, legacy.snapshot().CurrentPeriodEnd)
}
