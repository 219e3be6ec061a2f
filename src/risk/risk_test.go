package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"orderexecution/src/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testOrder(quantity int64, price string) *model.Order {
	return &model.Order{
		ID:       1,
		UserID:   7,
		Ticker:   "ABC",
		Quantity: quantity,
		Price:    d(price),
		Side:     model.OrderSideBuy,
		Status:   model.OrderStatusSubmitted,
	}
}

func TestAlwaysAccept(t *testing.T) {
	decision, err := AlwaysAccept{}.Decide(context.Background(), testOrder(10, "25.50"))
	require.NoError(t, err)
	require.True(t, decision.Accepted)
	require.Empty(t, decision.Reason)
}

func TestLimitsDecider(t *testing.T) {
	tests := []struct {
		name       string
		decider    LimitsDecider
		order      *model.Order
		wantAccept bool
		wantReason string
	}{
		{
			name:       "no limits accepts everything",
			decider:    LimitsDecider{},
			order:      testOrder(1000000, "99999"),
			wantAccept: true,
		},
		{
			name:       "within limits",
			decider:    LimitsDecider{MaxQuantity: 100, MaxNotional: d("10000")},
			order:      testOrder(10, "25.50"),
			wantAccept: true,
		},
		{
			name:       "quantity over limit",
			decider:    LimitsDecider{MaxQuantity: 5},
			order:      testOrder(10, "25.50"),
			wantAccept: false,
			wantReason: "quantity exceeds limit",
		},
		{
			name:       "notional over limit",
			decider:    LimitsDecider{MaxNotional: d("100")},
			order:      testOrder(10, "25.50"),
			wantAccept: false,
			wantReason: "notional exceeds limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := tt.decider.Decide(context.Background(), tt.order)
			require.NoError(t, err)
			require.Equal(t, tt.wantAccept, decision.Accepted)
			require.Equal(t, tt.wantReason, decision.Reason)
		})
	}
}

func TestReferencePriceDecider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/quotes", r.URL.Path)
		require.Equal(t, "ABC", r.URL.Query().Get("ticker"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(quoteResponse{Ticker: "ABC", Price: "25.00"})
	}))
	defer server.Close()

	decider := NewReferencePriceDecider(server.URL)

	t.Run("price inside band", func(t *testing.T) {
		decision, err := decider.Decide(context.Background(), testOrder(10, "25.50"))
		require.NoError(t, err)
		require.True(t, decision.Accepted)
	})

	t.Run("price outside band", func(t *testing.T) {
		decision, err := decider.Decide(context.Background(), testOrder(10, "50.00"))
		require.NoError(t, err)
		require.False(t, decision.Accepted)
		require.Contains(t, decision.Reason, "deviates")
	})
}

func TestReferencePriceDeciderFeedDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	decider := NewReferencePriceDecider(server.URL)

	_, err := decider.Decide(context.Background(), testOrder(10, "25.50"))
	require.Error(t, err)
}
