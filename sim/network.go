// Package sim drives a whole network of routers in one process: it writes the
// neighbour files, starts every node, triggers broadcast rounds, injects packets
// and finally stops every node with an exit message.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/encodeous/dvroute/core"
	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
)

type Network struct {
	Cfg *state.NetCfg
	// Dir holds tables/<id>.txt and logs/<id>_log.txt
	Dir string
	// Virtual replaces UDP sockets with an in-memory network when set
	Virtual *core.InmemNetwork
	Level   slog.Level
	// Console receives every node's records when not nil
	Console io.Writer

	StartDelay  time.Duration
	PacketDelay time.Duration

	routers map[state.NodeId]*core.Router
	ctl     core.Transport
	cancel  context.CancelCauseFunc
	wg      sync.WaitGroup
	closers []func() error
}

func NewNetwork(cfg *state.NetCfg, dir string) (*Network, error) {
	state.ExpandNetConfig(cfg)
	err := state.NetConfigValidator(cfg)
	if err != nil {
		return nil, err
	}
	return &Network{
		Cfg:         cfg,
		Dir:         dir,
		Level:       slog.LevelInfo,
		StartDelay:  state.DefaultStartDelay,
		PacketDelay: state.DefaultPacketDelay,
		routers:     make(map[state.NodeId]*core.Router),
	}, nil
}

func (n *Network) TablePath(id state.NodeId) string {
	return filepath.Join(n.Dir, "tables", string(id)+".txt")
}

func (n *Network) LogPath(id state.NodeId) string {
	return state.DefaultLogPath(filepath.Join(n.Dir, state.DefaultLogDir), id)
}

// WriteNeighbourFiles writes one neighbour file per router
func (n *Network) WriteNeighbourFiles() error {
	err := os.MkdirAll(filepath.Join(n.Dir, "tables"), 0700)
	if err != nil {
		return err
	}
	for _, rt := range n.Cfg.Routers {
		neighs, err := n.Cfg.Neighbours(rt.Id)
		if err != nil {
			return err
		}
		err = os.WriteFile(n.TablePath(rt.Id), []byte(state.FormatNeighbours(neighs)), 0600)
		if err != nil {
			return fmt.Errorf("failed to write neighbours of %s: %w", rt.Id, err)
		}
	}
	return nil
}

func (n *Network) listen(port uint16) (core.Transport, error) {
	if n.Virtual != nil {
		return n.Virtual.Listen(port)
	}
	return core.ListenUdp(n.Cfg.Host, port)
}

// Start launches every router in its own goroutine. Cancelling ctx closes all of them.
func (n *Network) Start(ctx context.Context) error {
	err := n.WriteNeighbourFiles()
	if err != nil {
		return err
	}
	ctx, n.cancel = context.WithCancelCause(ctx)
	for _, rt := range n.Cfg.Routers {
		r, err := n.startRouter(rt.Id)
		if err != nil {
			n.abort(err)
			return fmt.Errorf("failed to start %s: %w", rt.Id, err)
		}
		n.routers[rt.Id] = r
	}
	// opened last so the automatic port skips the router ports
	n.ctl, err = n.listen(0)
	if err != nil {
		n.abort(err)
		return err
	}
	for _, r := range n.routers {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			err := core.Run(ctx, r)
			if err != nil {
				r.Log.Logger().Error("router stopped with error", "err", err)
			}
		}()
	}
	return nil
}

func (n *Network) startRouter(id state.NodeId) (*core.Router, error) {
	port, err := n.Cfg.PortOf(id)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := core.NewLogger(id, n.Console, n.LogPath(id), n.Level)
	if err != nil {
		return nil, err
	}
	n.closers = append(n.closers, closeLog)
	log := core.NewEventLog(logger)
	log.Record(core.Startup, "received args", "id", id, "port", port, "neighbours", n.TablePath(id))

	neighs, err := state.ReadNeighbours(n.TablePath(id))
	if err != nil {
		return nil, err
	}
	err = state.NeighboursValidator(id, neighs)
	if err != nil {
		return nil, err
	}
	transport, err := n.listen(port)
	if err != nil {
		return nil, err
	}
	return core.NewRouter(id, neighs, transport, log), nil
}

func (n *Network) abort(cause error) {
	n.cancel(cause)
	for _, r := range n.routers {
		r.Stop()
	}
	n.closeLogs()
}

func (n *Network) closeLogs() {
	for _, c := range n.closers {
		_ = c()
	}
	n.closers = nil
}

func (n *Network) sendTo(id state.NodeId, msg protocol.Message) error {
	port, err := n.Cfg.PortOf(id)
	if err != nil {
		return err
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return n.ctl.Send(port, data)
}

func (n *Network) broadcast(msg protocol.Message) error {
	var errs []error
	for _, rt := range n.Cfg.Routers {
		errs = append(errs, n.sendTo(rt.Id, msg))
	}
	return errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-time.After(d):
		return nil
	}
}

// Converge asks every router to advertise its table, Cfg.Rounds times
func (n *Network) Converge(ctx context.Context) error {
	for round := range n.Cfg.Rounds {
		slog.Debug("broadcast round", "round", round+1, "of", n.Cfg.Rounds)
		err := n.broadcast(&protocol.SendTable{})
		if err != nil {
			return err
		}
		err = sleep(ctx, n.Cfg.RoundDelay)
		if err != nil {
			return err
		}
	}
	return nil
}

// SendPacket injects a data packet at p.From
func (n *Network) SendPacket(p state.PacketCfg) error {
	return n.sendTo(p.From, &protocol.DataPacket{
		Source:      p.From,
		Destination: p.To,
		Msg:         p.Msg,
	})
}

// Shutdown sends exit to every router and waits for all of them to stop. If
// exit cannot be sent or ctx ends first, the routers are cancelled instead.
func (n *Network) Shutdown(ctx context.Context) error {
	defer n.closeLogs()
	defer n.ctl.Close()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	stop := func(cause error) error {
		n.cancel(cause)
		<-done
		return cause
	}
	for {
		err := n.broadcast(&protocol.Exit{})
		if err != nil {
			return stop(fmt.Errorf("failed to send exit: %w", err))
		}
		// exit can be lost like any other datagram
		select {
		case <-done:
			n.cancel(nil)
			return nil
		case <-ctx.Done():
			return stop(context.Cause(ctx))
		case <-time.After(n.PacketDelay):
		}
	}
}

// Run performs a complete simulation
func (n *Network) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(errors.New("simulation finished"))

	err := n.Start(ctx)
	if err != nil {
		return err
	}
	err = sleep(ctx, n.StartDelay)
	if err == nil {
		err = n.Converge(ctx)
	}
	if err == nil {
		err = sleep(ctx, n.Cfg.SettleDelay)
	}
	for _, p := range n.Cfg.Packets {
		if err != nil {
			break
		}
		slog.Info("sending packet", "from", p.From, "to", p.To, "msg", p.Msg)
		err = n.SendPacket(p)
		if err == nil {
			err = sleep(ctx, n.PacketDelay)
		}
	}
	if err != nil {
		cancel(err)
	}
	return errors.Join(err, n.Shutdown(ctx))
}

// Routers returns the routers of a started network. Their state must only be
// inspected after Shutdown.
func (n *Network) Routers() map[state.NodeId]*core.Router {
	return n.routers
}
