package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/open-teleop/armbridge/domain/teleop"
	"github.com/open-teleop/armbridge/pkg/actuator"
	"github.com/open-teleop/armbridge/pkg/config"
	"github.com/open-teleop/armbridge/pkg/driver"
	customlog "github.com/open-teleop/armbridge/pkg/log"
	"github.com/open-teleop/armbridge/pkg/zeromq"
)

type Options struct {
	Bind      string    `long:"bind" default:"tcp://*:5560" description:"ZeroMQ REP endpoint to serve the driver protocol on"`
	MinZ      float64   `long:"min-z" default:"0.0" description:"Lowest reachable tool height in metres"`
	MaxRadius float64   `long:"max-radius" default:"0.85" description:"Reach sphere radius in metres, 0 disables it"`
	Start     []float64 `long:"start" description:"Initial pose, six values (repeat the flag)"`
	LogLevel  string    `long:"log-level" default:"info" description:"Log level"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Simulated arm driver serving the bridge driver protocol over ZeroMQ"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logger, err := customlog.NewLogrusLogger(opts.LogLevel, "")
	if err != nil {
		os.Exit(1)
	}

	startPose := config.Default().Start.Pose
	if len(opts.Start) > 0 {
		startPose = opts.Start
	}
	start, err := teleop.PoseFromSlice(startPose)
	if err != nil {
		logger.Fatalf("Invalid start pose: %v", err)
	}

	arm := actuator.NewSimArm(start, teleop.SafetyLimits{MinZ: opts.MinZ, MaxRadius: opts.MaxRadius}, logger)
	dispatcher := driver.NewDispatcher(logger)
	driver.NewArmHandlers(arm, logger).Register(dispatcher)

	zctx, err := zeromq.NewContext()
	if err != nil {
		logger.Fatalf("%v", err)
	}

	server, err := zeromq.NewDriverServer(zctx, opts.Bind, dispatcher, logger)
	if err != nil {
		logger.Fatalf("Failed to start driver server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server.Start(ctx)
	logger.Infof("Simulated arm ready at %s", start)
	<-ctx.Done()

	server.Stop()
	_ = zctx.Term()
	st := arm.Stats()
	logger.Infof("Simulated arm stopped: %d velocity commands, %d stops, %d validity queries",
		st.VelocityCommands, st.Stops, st.ValidityQueries)
}
