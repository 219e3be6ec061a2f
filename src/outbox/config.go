package outbox

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Interval     time.Duration `envconfig:"OUTBOX_INTERVAL" default:"500ms"`
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	WarnAttempts int           `envconfig:"OUTBOX_WARN_ATTEMPTS" default:"10"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
