package broker

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Partitions      int           `envconfig:"BROKER_PARTITIONS" default:"4"`
	BufferSize      int           `envconfig:"BROKER_BUFFER_SIZE" default:"256"`
	RedeliveryDelay time.Duration `envconfig:"BROKER_REDELIVERY_DELAY" default:"100ms"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
