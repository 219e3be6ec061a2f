package risk

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MaxQuantity int64  `envconfig:"RISK_MAX_QUANTITY" default:"0"`
	MaxNotional string `envconfig:"RISK_MAX_NOTIONAL" default:"0"`

	QuoteBaseURL    string        `envconfig:"RISK_QUOTE_BASE_URL"`
	QuoteTimeout    time.Duration `envconfig:"RISK_QUOTE_TIMEOUT" default:"5s"`
	PriceBandPct    string        `envconfig:"RISK_PRICE_BAND_PCT" default:"10"`
	QuoteRetryCount int           `envconfig:"RISK_QUOTE_RETRY_COUNT" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
