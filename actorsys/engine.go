package actorsys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTimeout is returned by Ask when no reply arrives within the
// requested deadline.
var ErrTimeout = errors.New("actorsys: ask timed out")

// Engine manages actor lifecycle and message dispatch. The dispatcher
// in package server runs as a single actor hosted by one Engine, so
// that the clock goroutine and the UDP listener goroutine feed a
// single-consumer mailbox (spec §5) rather than shared memory.
type Engine struct {
	pidCounter uint64
	actors     map[string]*process
	mu         sync.RWMutex
	stopping   atomic.Bool
	log        *slog.Logger
}

// NewEngine creates an actor engine. A nil logger falls back to
// slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		actors: make(map[string]*process),
		log:    logger,
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.log == nil {
		return slog.Default()
	}
	return e.log
}

func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

// Spawn starts a new actor and returns its PID, or nil if the engine
// is shutting down.
func (e *Engine) Spawn(props *Props) *PID {
	if e.stopping.Load() {
		e.logger().Warn("engine is stopping, refusing spawn")
		return nil
	}

	pid := e.nextPID()
	proc := newProcess(e, pid, props)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	go proc.run()
	e.Send(pid, Started{}, nil)

	return pid
}

// Send delivers a message to pid without waiting for a response.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	if pid == nil {
		return
	}
	_, isStopping := message.(Stopping)
	_, isStopped := message.(Stopped)
	_, isStarted := message.(Started)
	isSystemMsg := isStopping || isStopped || isStarted

	if e.stopping.Load() && !isSystemMsg {
		return
	}

	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()

	if !ok {
		return
	}
	proc.sendEnvelope(&messageEnvelope{Sender: sender, Message: message})
}

// Ask delivers a message and blocks until the actor calls ctx.Reply,
// or the timeout elapses.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if pid == nil {
		return nil, fmt.Errorf("actorsys: ask to nil pid")
	}

	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("actorsys: actor %s not found", pid.ID)
	}

	reply := make(chan interface{}, 1)
	proc.sendEnvelope(&messageEnvelope{
		Message:   message,
		requestID: e.nextPID().ID,
		reply:     reply,
	})

	select {
	case resp := <-reply:
		return resp, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

// Stop requests an actor to wind down: it receives Stopping, finishes
// that message, then its goroutine exits.
func (e *Engine) Stop(pid *PID) {
	if pid == nil {
		return
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if !ok {
		return
	}

	e.Send(pid, Stopping{}, nil)

	select {
	case <-proc.stopCh:
	default:
		close(proc.stopCh)
	}
}

func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// Shutdown stops every actor and waits up to timeout for them to
// terminate.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		return
	}

	e.mu.RLock()
	pids := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pids = append(pids, proc.pid)
	}
	e.mu.RUnlock()

	for _, pid := range pids {
		e.Stop(pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.mu.RLock()
		remaining := len(e.actors)
		e.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	e.mu.Lock()
	remaining := len(e.actors)
	if remaining > 0 {
		e.logger().Warn("engine shutdown timeout, actors did not stop", "remaining", remaining)
		e.actors = make(map[string]*process)
	}
	e.mu.Unlock()
}
