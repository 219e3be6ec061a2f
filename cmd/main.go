package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"orderexecution/cmd/execution"
)

var Version string

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()

	app := cli.NewApp()
	app.Name = "Order Execution CMD"
	app.Usage = "The order execution command line interface"

	app.Commands = []cli.Command{
		executionCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var executionCMD = cli.Command{
	Name:        "execution",
	Usage:       "run the order execution pipeline",
	Action:      executionAction,
	ArgsUsage:   "",
	Flags:       []cli.Flag{},
	Description: `Consume order placed events, execute them and publish order executed events`,
}

func executionAction(_ *cli.Context) error {

	logrus.WithField("cmd", "execution").Info("Starting execution CMD")

	pipeline := &execution.Execution{}
	err := pipeline.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
