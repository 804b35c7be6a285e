package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path"
	"time"

	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// SetupDebugging serves expvar, pprof and /debug/metrics on addr
func SetupDebugging(addr string) {
	if addr == "" {
		return
	}
	go func() {
		slog.Warn("debug server stopped", "err", http.ListenAndServe(addr, nil))
	}()
}

// NewLogger builds a logger writing to console (if not nil) and appending to logPath (if not empty).
// The returned function closes the log file.
func NewLogger(id state.NodeId, console io.Writer, logPath string, logLevel slog.Level) (*slog.Logger, func() error, error) {
	handlers := make([]slog.Handler, 0)
	if console != nil {
		handlers = append(handlers,
			tint.NewHandler(console, &tint.Options{
				Level:        logLevel,
				AddSource:    false,
				CustomPrefix: string(id),
				ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
					if attr.Key == "time" {
						return slog.Attr{}
					}
					return attr
				},
			}))
	}

	closer := func() error { return nil }
	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// Start runs a node until it receives an exit command. Only startup faults are returned.
func Start(ctx context.Context, cfg state.LocalCfg, logLevel slog.Level) error {
	state.ExpandLocalConfig(&cfg)
	err := state.NodeConfigValidator(&cfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := NewLogger(cfg.Id, os.Stderr, cfg.LogPath, logLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	log := NewEventLog(logger)
	log.Record(Startup, "received args", "id", cfg.Id, "port", cfg.Port, "neighbours", cfg.NeighbourPath)

	neighs, err := state.ReadNeighbours(cfg.NeighbourPath)
	if err != nil {
		return err
	}
	err = state.NeighboursValidator(cfg.Id, neighs)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.NeighbourPath, err)
	}

	transport, err := ListenUdp(cfg.Host, cfg.Port)
	if err != nil {
		return err
	}

	r := NewRouter(cfg.Id, neighs, transport, log)
	return Run(ctx, r)
}

// Run announces the router and runs its main loop
func Run(ctx context.Context, r *Router) error {
	r.Log.Record(TableLoaded, "loaded neighbours", "count", len(r.Neighbours), "table", r.Table.String())
	r.Log.Record(Listening, "started listening", "port", r.Port)
	return MainLoop(ctx, r)
}

// MainLoop receives and handles datagrams one at a time until the router terminates.
// Cancelling ctx closes the transport, which also ends the loop.
func MainLoop(ctx context.Context, r *Router) error {
	logger := r.Log.Logger()
	logger.Debug("started main loop")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = r.Transport.Close()
		case <-done:
		}
	}()

	for r.Status == Running {
		data, err := r.Transport.Receive()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			r.Log.Record(ReceiveFailed, "failed to receive", "err", err)
			continue
		}
		start := time.Now()
		r.Dispatch(data)
		elapsed := time.Since(start)
		perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
		if elapsed > state.SlowDispatchThreshold {
			logger.Warn("dispatch took a long time!", "elapsed", elapsed, "len", len(data))
		}
	}

	reason := "exit command"
	if ctx.Err() != nil {
		reason = context.Cause(ctx).Error()
	}
	r.Stop()
	logger.Info("stopped main loop", "reason", reason)
	return nil
}
