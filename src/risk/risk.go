package risk

import (
	"context"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderexecution/src/model"
)

// Decision is the outcome of an execution check. Both outcomes are
// legitimate terminal results, not errors.
type Decision struct {
	Accepted bool
	Reason   string
}

// Accept returns an accepting decision.
func Accept() Decision {
	return Decision{Accepted: true}
}

// Reject returns a rejecting decision with a human-readable reason.
func Reject(reason string) Decision {
	return Decision{Accepted: false, Reason: reason}
}

// Decider decides whether an order may execute. Implementations must not
// mutate the order; any external calls they make (fund checks, price feeds)
// are their own concern.
type Decider interface {
	Decide(ctx context.Context, order *model.Order) (Decision, error)
}

// AlwaysAccept approves every order. Useful as a placeholder in environments
// without real fund or market checks.
type AlwaysAccept struct{}

func (AlwaysAccept) Decide(_ context.Context, _ *model.Order) (Decision, error) {
	return Accept(), nil
}

// LimitsDecider rejects orders exceeding configured size limits.
// A zero limit disables that check.
type LimitsDecider struct {
	MaxQuantity int64
	MaxNotional decimal.Decimal
}

// NewLimitsDecider builds a decider from the package configuration.
func NewLimitsDecider() *LimitsDecider {
	config := GetConfig()

	maxNotional := decimal.Zero
	if config.MaxNotional != "" {
		parsed, err := decimal.NewFromString(config.MaxNotional)
		if err != nil {
			logger.WithField("max_notional", config.MaxNotional).
				WithError(err).Warn("Invalid RISK_MAX_NOTIONAL, notional check disabled")
		} else {
			maxNotional = parsed
		}
	}

	return &LimitsDecider{
		MaxQuantity: config.MaxQuantity,
		MaxNotional: maxNotional,
	}
}

func (d *LimitsDecider) Decide(_ context.Context, order *model.Order) (Decision, error) {
	if d.MaxQuantity > 0 && order.Quantity > d.MaxQuantity {
		logger.WithFields(map[string]interface{}{
			"order_id":     order.ID,
			"quantity":     order.Quantity,
			"max_quantity": d.MaxQuantity,
		}).Info("Order rejected by quantity limit")

		return Reject("quantity exceeds limit"), nil
	}

	if d.MaxNotional.IsPositive() {
		notional := order.Price.Mul(decimal.NewFromInt(order.Quantity))
		if notional.GreaterThan(d.MaxNotional) {
			logger.WithFields(map[string]interface{}{
				"order_id":     order.ID,
				"notional":     notional.String(),
				"max_notional": d.MaxNotional.String(),
			}).Info("Order rejected by notional limit")

			return Reject("notional exceeds limit"), nil
		}
	}

	return Accept(), nil
}
