package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"orderexecution/src/broker"
	"orderexecution/src/database"
	"orderexecution/src/executors"
	"orderexecution/src/outbox"
	"orderexecution/src/repository"
	"orderexecution/src/risk"
	"orderexecution/src/server"
)

type Execution struct{}

// Start wires the full pipeline and blocks until the process is signaled:
// broker subscriptions are registered explicitly before delivery starts, the
// outbox relay drains alongside, and the health server reports liveness.
func (t *Execution) Start() error {
	config := GetConfig()
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to main database")
		return err
	}

	decider, err := buildDecider(config)
	if err != nil {
		logrus.WithError(err).Error("Failed to build execution decider")
		return err
	}
	logrus.WithField("decider", config.Decider).Info("Starting order execution pipeline")

	orders := repository.NewOrderRepository()
	outboxRepo := repository.NewOutboxRepository()

	b := broker.NewMemoryBroker(broker.GetConfig())

	coordinator := executors.NewCoordinator(orders, decider)
	listener := executors.NewListener(coordinator, b)
	listener.Register(b)

	b.Start(ctx)
	defer b.Stop()

	relay := outbox.NewRelay(outboxRepo, b, outbox.GetConfig())
	go relay.Run(ctx)

	server.StartServer(ctx, server.GetConfig().Port)

	return nil
}

func buildDecider(config *Config) (risk.Decider, error) {
	switch config.Decider {
	case "accept":
		return risk.AlwaysAccept{}, nil
	case "limits":
		return risk.NewLimitsDecider(), nil
	case "quote":
		riskConfig := risk.GetConfig()
		if riskConfig.QuoteBaseURL == "" {
			return nil, errors.New("RISK_QUOTE_BASE_URL not set")
		}
		return risk.NewReferencePriceDecider(riskConfig.QuoteBaseURL), nil
	default:
		return nil, fmt.Errorf("decider %s not supported", config.Decider)
	}
}
