package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/cli"
	"github.com/temirov/mdtree/internal/utils"
)

// main is the entry point for the mdtree command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(false)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	applicationExecutionError := cli.Execute(ctx)
	stop()
	if applicationExecutionError != nil {
		loggerInstance.Error(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
		_ = loggerInstance.Sync()
		os.Exit(cli.ExitCode(applicationExecutionError))
	}
	_ = loggerInstance.Sync()
}
