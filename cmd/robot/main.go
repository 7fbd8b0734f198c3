// cmd/robot/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-gripper/internal/config"
	"github.com/tamzrod/modbus-gripper/internal/engine"
	"github.com/tamzrod/modbus-gripper/internal/frame"
	"github.com/tamzrod/modbus-gripper/internal/robot"
	"github.com/tamzrod/modbus-gripper/internal/status"
	"github.com/tamzrod/modbus-gripper/internal/transport"
)

const usage = "usage: robot <config.yaml> <position|joints|watch>..."

// exit is replaced in tests.
var exit = os.Exit

func main() {
	if len(os.Args) < 3 {
		log.Fatal(usage)
	}

	cfgPath := os.Args[1]
	commands := os.Args[2:]
	for _, c := range commands {
		switch c {
		case "position", "joints", "watch":
		default:
			log.Fatalf("unknown command %q\n%s", c, usage)
		}
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	if cfg.Robot == nil {
		log.Fatal("config validation failed: robot section required")
	}
	config.Normalize(cfg)

	logger := log.StandardLogger()
	if err := cfg.Log.Apply(logger); err != nil {
		log.Fatalf("log setup failed: %v", err)
	}

	// --------------------
	// TCP connection + engine
	// --------------------

	rc := cfg.Robot
	conn, err := transport.DialTCP(transport.TCPConfig{
		Endpoint: rc.Endpoint,
		Timeout:  rc.Timeout(),
	})
	if err != nil {
		log.Fatalf("connect failed (endpoint=%s): %v", rc.Endpoint, err)
	}
	defer conn.Close()
	logger.WithField("endpoint", rc.Endpoint).Info("connected")

	eng, err := engine.New(conn, frame.NewTCPFramer(), engine.Options{
		Timeout: rc.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("engine setup failed: %v", err)
	}

	r, err := robot.New(eng, *rc.UnitID)
	if err != nil {
		log.Fatalf("robot setup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, c := range commands {
		entry := logger.WithField("command", c)

		switch c {
		case "position":
			p, err := r.ReadPose(ctx)
			if err != nil {
				fail(entry, err, conn)
			}
			entry.WithField("pose", p.String()).Info("pass")

		case "joints":
			j, err := r.ReadJoints(ctx)
			if err != nil {
				fail(entry, err, conn)
			}
			entry.WithField("joints", j.String()).Info("pass")

		case "watch":
			// runs until interrupted; link health is logged on change
			var health status.Tracker
			err := r.WatchPose(ctx, rc.Poll.Interval(), func(at time.Time, p robot.Pose, err error) {
				if health.Observe(at, err) {
					entry.WithField("health", health.Snapshot().String()).Warn("link health changed")
				}
				if err != nil {
					entry.WithError(err).Debug("sample failed")
					return
				}
				entry.WithField("pose", p.String()).Info("sample")
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				fail(entry, err, conn)
			}
			entry.Info("pass")
		}
	}
}

// fail reports one failed command, closes the transport and exits.
// os.Exit skips deferred calls.
func fail(entry *log.Entry, err error, tr transport.Transport) {
	entry.WithError(err).WithField("code", engine.CodeOf(err)).Error("fail")
	if cerr := tr.Close(); cerr != nil {
		entry.WithError(cerr).Warn("close failed")
	}
	exit(1)
}
