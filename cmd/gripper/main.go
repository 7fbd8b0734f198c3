// cmd/gripper/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-gripper/internal/config"
	"github.com/tamzrod/modbus-gripper/internal/engine"
	"github.com/tamzrod/modbus-gripper/internal/frame"
	"github.com/tamzrod/modbus-gripper/internal/gripper"
	"github.com/tamzrod/modbus-gripper/internal/poller"
	"github.com/tamzrod/modbus-gripper/internal/transport"
)

const usage = "usage: gripper <config.yaml> <activate|close|open|status>..."

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
		case "activate", "close", "open", "status":
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
	if cfg.Gripper == nil {
		log.Fatal("config validation failed: gripper section required")
	}
	config.Normalize(cfg)

	logger := log.StandardLogger()
	if err := cfg.Log.Apply(logger); err != nil {
		log.Fatalf("log setup failed: %v", err)
	}

	// --------------------
	// Serial line + engine
	// --------------------

	gc := cfg.Gripper
	line, err := transport.OpenSerial(transport.SerialConfig{
		Device:      gc.Serial.Device,
		BaudRate:    gc.Serial.BaudRate,
		DataBits:    gc.Serial.DataBits,
		Parity:      gc.Serial.Parity,
		StopBits:    gc.Serial.StopBits,
		ReadTimeout: gc.Serial.ReadTimeout(),
		MinBytes:    gc.Serial.MinBytes,
	})
	if err != nil {
		log.Fatalf("serial open failed (device=%s): %v", gc.Serial.Device, err)
	}
	defer line.Close()

	eng, err := engine.New(line, frame.RTUFramer{}, engine.Options{
		Timeout: gc.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("engine setup failed: %v", err)
	}

	g, err := gripper.New(eng, gripper.Options{
		UnitID: *gc.UnitID,
		Poll:   poller.PolicyFrom(gc.Poll),
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("gripper setup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Commands, in order; the first failure ends the run
	// --------------------

	for _, c := range commands {
		entry := logger.WithField("command", c)

		if c == "status" {
			s, err := g.Status(ctx)
			if err != nil {
				fail(entry, err, line)
			}
			entry.WithField("status", s.String()).Info("pass")
			continue
		}

		var res poller.Result
		switch c {
		case "activate":
			res, err = g.Activate(ctx)
		case "close":
			res, err = g.Close(ctx)
		case "open":
			res, err = g.Open(ctx)
		}
		entry = entry.WithFields(log.Fields{"state": res.State.String(), "attempts": res.Attempts})
		if err != nil {
			fail(entry, err, line)
		}
		entry.Info("pass")
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
