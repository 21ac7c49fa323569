// Package server hosts the UDP listener, the 20Hz clock, and the
// single dispatcher actor that serializes every client packet and
// tick onto one mailbox, grounded on original_source/src/net/server.rs
// and the teacher's actor-per-connection shape in
// connection_handler.go (here, one actor for the whole server instead
// of one per connection, since spec §5 calls for a single-consumer
// dispatcher rather than a connection actor per peer).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/lguibr/overworld/actorsys"
	"github.com/lguibr/overworld/assets"
	"github.com/lguibr/overworld/orchestrator"
	"github.com/lguibr/overworld/plugin"
	"github.com/lguibr/overworld/world"
)

// Server owns the transport and every subsystem the dispatcher
// composes: the orchestrator (send-side fan-out), the world (game
// state), the plugin wrapper (extension callbacks), and the asset
// store (content catalog).
type Server struct {
	cfg Config
	log *slog.Logger

	engine        *actorsys.Engine
	dispatcherPID *actorsys.PID

	orch    *orchestrator.Orchestrator
	world   *world.World
	plugins *plugin.Wrapper
	store   *assets.Store

	conn net.PacketConn
}

// New builds a Server around cfg. A nil logger falls back to
// slog.Default().
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		log:     logger,
		engine:  actorsys.NewEngine(logger),
		world:   world.New(),
		plugins: plugin.NewWrapper(logger),
		store:   assets.NewStore(),
	}
}

// World exposes the live game state for startup wiring (registering
// areas) before Listen is called.
func (s *Server) World() *world.World { return s.world }

// Store exposes the asset catalog for startup wiring.
func (s *Server) Store() *assets.Store { return s.store }

// AddPlugin registers a server extension and returns its slot handle.
func (s *Server) AddPlugin(iface plugin.Interface) plugin.SlotHandle {
	return s.plugins.Register(iface)
}

// newPlayerID allocates a new opaque player id, grounded on spec §4.8's
// "allocate a new opaque id (UUIDv4-equivalent)" on Login.
func (s *Server) newPlayerID() string {
	return uuid.NewString()
}

// udpTransport adapts a net.PacketConn to orchestrator.Transport.
type udpTransport struct {
	conn net.PacketConn
}

func (t *udpTransport) WriteTo(addr string, data []byte) error {
	resolved, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("server: resolve %s: %w", addr, err)
	}
	_, err = t.conn.WriteTo(data, resolved)
	return err
}

// Listen binds addr, starts the listener and clock goroutines, and
// blocks until ctx is canceled. A socket read error ends the listener
// goroutine but does not make Listen return. Both goroutines
// only ever touch the socket and the dispatcher's mailbox — all game
// state lives behind the dispatcher actor, exactly as spec §5
// describes.
func (s *Server) Listen(ctx context.Context, addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.conn = conn
	s.orch = orchestrator.New(&udpTransport{conn: conn})

	d := &dispatcher{srv: s, sorters: make(map[string]*clientConn)}
	s.dispatcherPID = s.engine.Spawn(actorsys.NewProps(func() actorsys.Actor { return d }))

	s.plugins.Init(s.world)

	done := make(chan struct{})
	go s.clockLoop(ctx, done)
	go s.listenLoop(ctx, conn)

	<-ctx.Done()
	_ = conn.Close()
	<-done
	s.engine.Stop(s.dispatcherPID)
	return ctx.Err()
}

func (s *Server) clockLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			s.engine.Send(s.dispatcherPID, tickMsg{deltaTime: delta}, nil)
		}
	}
}

func (s *Server) listenLoop(ctx context.Context, conn net.PacketConn) {
	buf := make([]byte, s.cfg.MaxPayloadSize)
	for {
		n, rawAddr, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				if s.cfg.LogPackets {
					s.log.Warn("read error", "err", err)
				}
				return
			}
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		s.engine.Send(s.dispatcherPID, rawDatagramMsg{addr: rawAddr.String(), data: datagram}, nil)
	}
}
