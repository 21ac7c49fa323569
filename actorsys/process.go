package actorsys

import (
	"fmt"
	"runtime/debug"
)

const defaultMailboxSize = 1024

// process is the running instance of an actor: its state, mailbox and
// lifecycle.
type process struct {
	engine  *Engine
	pid     *PID
	actor   Actor
	mailbox chan *messageEnvelope
	props   *Props
	stopCh  chan struct{}
	stopped bool
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		mailbox: make(chan *messageEnvelope, defaultMailboxSize),
		stopCh:  make(chan struct{}),
	}
}

func (p *process) sendEnvelope(env *messageEnvelope) {
	select {
	case p.mailbox <- env:
	default:
		p.engine.logger().Warn("actor mailbox full, dropping message",
			"actor", p.pid.ID, "type", fmt.Sprintf("%T", env.Message))
	}
}

func (p *process) run() {
	defer func() {
		p.stopped = true
		p.invokeReceive(Stopped{}, nil, "", nil)
		p.engine.remove(p.pid)
	}()

	defer func() {
		if r := recover(); r != nil {
			p.engine.logger().Error("actor panicked",
				"actor", p.pid.ID, "panic", r, "stack", string(debug.Stack()))
			p.stopped = true
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic(fmt.Sprintf("actorsys: producer for %s returned nil actor", p.pid.ID))
	}

	for {
		select {
		case <-p.stopCh:
			return
		case env := <-p.mailbox:
			if p.stopped {
				continue
			}
			switch msg := env.Message.(type) {
			case Started:
				p.invokeReceive(msg, env.Sender, env.requestID, env.reply)
			case Stopping:
				p.stopped = true
				p.invokeReceive(msg, env.Sender, env.requestID, env.reply)
				p.closeStopCh()
			default:
				p.invokeReceive(env.Message, env.Sender, env.requestID, env.reply)
			}
		}
	}
}

func (p *process) closeStopCh() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
}

func (p *process) invokeReceive(msg interface{}, sender *PID, requestID string, reply chan interface{}) {
	ctx := &context{
		engine:    p.engine,
		self:      p.pid,
		sender:    sender,
		message:   msg,
		requestID: requestID,
		replyCh:   reply,
	}
	p.actor.Receive(ctx)
}
