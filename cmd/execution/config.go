package execution

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Decider string `envconfig:"EXECUTION_DECIDER" default:"accept"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
