package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/open-teleop/armbridge/domain/diagnostic"
	"github.com/open-teleop/armbridge/domain/teleop"
	"github.com/open-teleop/armbridge/pkg/actuator"
	"github.com/open-teleop/armbridge/pkg/api"
	"github.com/open-teleop/armbridge/pkg/config"
	"github.com/open-teleop/armbridge/pkg/frame"
	customlog "github.com/open-teleop/armbridge/pkg/log"
	"github.com/open-teleop/armbridge/pkg/processing"
	"github.com/open-teleop/armbridge/pkg/transport"
	"github.com/open-teleop/armbridge/pkg/zeromq"
	"github.com/open-teleop/armbridge/services"
)

type Options struct {
	ConfigDir string `long:"config-dir" default:"config" description:"Directory holding bridge_config.yaml"`
	LogLevel  string `long:"log-level" description:"Override logging.level from the bootstrap config"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Open-Teleop arm bridge: turns streamed velocity frames into bounded arm motion"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "bridge: %v\n", err)
		os.Exit(1)
	}
}

// sessionSource is implemented by both transports.
type sessionSource interface {
	Accept(ctx context.Context) (*transport.Session, error)
}

func run(opts Options) error {
	bootstrap, err := config.LoadBootstrapConfig(opts.ConfigDir)
	if err != nil {
		return err
	}
	level := bootstrap.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := customlog.NewLogrusLoggerWithOptions(level, bootstrap.Logging.LogPath, customlog.FileOptions{
		MaxSizeMB:  bootstrap.Logging.MaxSizeMB,
		MaxBackups: bootstrap.Logging.MaxBackups,
	})
	if err != nil {
		return err
	}

	configService, err := services.NewBridgeConfigService(bootstrap.OperationalConfigPath(), logger)
	if err != nil {
		return err
	}
	cfg := configService.GetCurrentConfig()
	if cfg == nil {
		def := config.Default()
		cfg = &def
		logger.Warnf("Running with built-in defaults")
	}
	start, err := cfg.StartPose()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zctx, err := zeromq.NewContext()
	if err != nil {
		return err
	}
	defer zctx.Term()

	var arm actuator.Arm
	switch bootstrap.Actuator.Kind {
	case config.ActuatorZeroMQ:
		timeout := time.Duration(bootstrap.ZeroMQ.RequestTimeoutMs) * time.Millisecond
		client, err := zeromq.NewArmClient(zctx, bootstrap.ZeroMQ.ActuatorAddress, timeout, logger.WithField("component", "arm"))
		if err != nil {
			return err
		}
		defer client.Close()
		arm = client
		logger.Infof("Using remote arm driver at %s", bootstrap.ZeroMQ.ActuatorAddress)
	default:
		arm = actuator.NewSimArm(start, cfg.Limits(), logger.WithField("component", "sim"))
		logger.Infof("Using simulated arm")
	}

	diag := diagnostic.NewBridgeService(cfg.RobotID, cfg.Cadence.Policy)
	observers := []teleop.Observer{diag}

	if bootstrap.ZeroMQ.PublishBindAddress != "" {
		publisher, err := zeromq.NewReportPublisher(zctx, bootstrap.ZeroMQ.PublishBindAddress, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		configService.SetPublisher(publisher)

		pool := processing.NewReportPool("reports", zeromq.TopicCycleReport,
			bootstrap.Reporting.Workers, bootstrap.Reporting.QueueSize, logger)
		pool.SetProcessor(processing.EncodeCycleReport)
		pool.SetResultHandler(processing.NewPublishingResultHandler(logger, publisher).CreateHandlerFunc())
		pool.Start()
		defer pool.Stop()
		observers = append(observers, pool)
	}

	var source sessionSource
	var wsSource *transport.WebSocketSource
	switch bootstrap.Transport.Kind {
	case config.TransportWebSocket:
		wsSource = transport.NewWebSocketSource(logger.WithField("component", "transport"))
		source = wsSource
	default:
		listener, err := transport.Listen(bootstrap.Transport.ListenAddress, logger.WithField("component", "transport"))
		if err != nil {
			return err
		}
		defer listener.Close()
		source = listener
	}

	if bootstrap.Server.HTTPPort > 0 {
		var verifier *api.TokenVerifier
		if bootstrap.Server.AuthSecret != "" {
			if verifier, err = api.NewTokenVerifier(bootstrap.Server.AuthSecret); err != nil {
				return err
			}
		}
		app := api.NewServer(api.Options{
			ConfigService: configService,
			Diagnostics:   diag,
			WebSocket:     wsSource,
			Verifier:      verifier,
			Logger:        logger,
		})
		addr := fmt.Sprintf(":%d", bootstrap.Server.HTTPPort)
		go func() {
			logger.Infof("HTTP API listening on %s", addr)
			if err := app.Listen(addr); err != nil {
				logger.Errorf("HTTP API stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				logger.Warnf("HTTP API forced to shutdown: %v", err)
			}
		}()
	}

	logger.Infof("Moving to start pose %s", start)
	if err := arm.MoveToPose(ctx, start, cfg.Start.Speed, cfg.Start.Acceleration); err != nil {
		return fmt.Errorf("move to start pose: %w", err)
	}

	loopErr := serveSession(ctx, source, arm, cfg, diag, observers, logger)

	logger.Infof("Stopping arm program")
	if err := arm.StopProgram(context.WithoutCancel(ctx)); err != nil {
		logger.Errorf("Stop program failed: %v", err)
	}
	return loopErr
}

// serveSession accepts one client and runs the control loop until the
// client disconnects or the process is told to stop.
func serveSession(
	ctx context.Context,
	source sessionSource,
	arm actuator.Arm,
	cfg *config.Config,
	diag *diagnostic.BridgeService,
	observers []teleop.Observer,
	logger customlog.Logger,
) error {
	session, err := source.Accept(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Infof("Shutdown requested before a client connected")
			return nil
		}
		return err
	}
	defer session.Close()
	diag.SessionStarted(session.ID, session.Remote)
	defer diag.SessionEnded()

	env, err := teleop.NewEnvelope(cfg.Safety.Strategy, cfg.Limits(), arm)
	if err != nil {
		return err
	}
	cadence, err := teleop.NewCadence(cfg.Cadence.Policy, cfg.CycleTiming())
	if err != nil {
		return err
	}

	loop, err := teleop.NewLoop(
		session,
		arm,
		teleop.NewProjector(env, cfg.Interpolation.Steps),
		cfg.Synthesizer(),
		cadence,
		logger,
		&teleop.LoopOptions{Session: session.ID, Observers: observers},
	)
	if err != nil {
		return err
	}

	err = loop.Run(ctx)
	switch {
	case errors.Is(err, io.EOF):
		logger.Infof("Client %s disconnected", session.Remote)
		return nil
	case frame.IsFrameError(err):
		logger.Warnf("Session %s ended on a bad frame: %v", session.ID, err)
		return nil
	}
	return err
}
