package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderexecution/src/model"
)

type quoteResponse struct {
	Ticker string `json:"ticker"`
	Price  string `json:"price"`
}

// ReferencePriceDecider rejects orders whose limit price deviates from the
// market reference price by more than a configured band. The reference price
// comes from an external quote service over HTTP; a feed outage is returned
// as an error and the caller records a system rejection.
type ReferencePriceDecider struct {
	http    *resty.Client
	bandPct decimal.Decimal
}

// NewReferencePriceDecider builds a decider against the given quote service.
func NewReferencePriceDecider(baseURL string) *ReferencePriceDecider {
	config := GetConfig()

	bandPct, err := decimal.NewFromString(config.PriceBandPct)
	if err != nil || !bandPct.IsPositive() {
		logger.WithField("price_band_pct", config.PriceBandPct).
			Warn("Invalid RISK_PRICE_BAND_PCT, falling back to 10")
		bandPct = decimal.NewFromInt(10)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(config.QuoteTimeout).
		SetRetryCount(config.QuoteRetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		})

	return &ReferencePriceDecider{
		http:    httpClient,
		bandPct: bandPct,
	}
}

func (d *ReferencePriceDecider) Decide(ctx context.Context, order *model.Order) (Decision, error) {
	var quote quoteResponse

	resp, err := d.http.R().
		SetContext(ctx).
		SetQueryParam("ticker", order.Ticker).
		SetResult(&quote).
		Get("/v1/quotes")

	if err != nil {
		return Decision{}, fmt.Errorf("quote request for %s failed: %w", order.Ticker, err)
	}
	if resp.StatusCode() != 200 {
		return Decision{}, fmt.Errorf("quote request for %s returned HTTP %d", order.Ticker, resp.StatusCode())
	}

	reference, err := decimal.NewFromString(quote.Price)
	if err != nil {
		return Decision{}, fmt.Errorf("quote for %s has invalid price %q: %w", order.Ticker, quote.Price, err)
	}
	if !reference.IsPositive() {
		return Decision{}, fmt.Errorf("quote for %s has non-positive price %s", order.Ticker, reference)
	}

	deviation := order.Price.Sub(reference).Abs().
		Div(reference).
		Mul(decimal.NewFromInt(100))

	if deviation.GreaterThan(d.bandPct) {
		logger.WithFields(map[string]interface{}{
			"order_id":  order.ID,
			"ticker":    order.Ticker,
			"price":     order.Price.String(),
			"reference": reference.String(),
			"deviation": deviation.String(),
			"band_pct":  d.bandPct.String(),
		}).Info("Order rejected by price band")

		return Reject(fmt.Sprintf("price deviates %s%% from reference", deviation.Round(2))), nil
	}

	return Accept(), nil
}
