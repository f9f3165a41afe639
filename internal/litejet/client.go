package litejet

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Config configures a Client. Transport is required; everything else
// has working defaults.
type Config struct {
	// Transport carries the line stream. The Client takes ownership and
	// closes it on Close or connection loss.
	Transport LineTransport

	// Table overrides the per-family command behavior. Nil selects
	// DefaultCommandTable.
	Table map[byte]CommandSpec

	// QueueSize bounds the number of commands waiting behind the one in
	// flight. Zero selects a default of 32.
	QueueSize int

	// SkipHandshake disables the startup state-dump probe that verifies
	// the panel is actually answering.
	SkipHandshake bool

	// Logger receives engine diagnostics. Nil discards them.
	Logger Logger
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Connected        bool
	LinesReceived    uint64
	CommandsSent     uint64
	EventsDispatched uint64
	Anomalies        uint64
}

// Client is a session with one LiteJet panel. All methods are safe for
// concurrent use. A Client whose transport is lost is dead; open a new
// one to reconnect.
type Client struct {
	transport LineTransport
	table     map[byte]CommandSpec
	store     *StateStore
	events    *dispatcher
	logger    Logger

	submitCh chan *submission
	done     *closeOnce
	lostOnce sync.Once
	wg       sync.WaitGroup

	pendingMu sync.Mutex
	pending   *pendingCommand

	connected        atomic.Bool
	linesReceived    atomic.Uint64
	commandsSent     atomic.Uint64
	eventsDispatched atomic.Uint64
	anomalies        atomic.Uint64
}

// submission is one queued command. result is buffered so the worker
// never blocks on a caller that gave up waiting.
type submission struct {
	text    string
	spec    CommandSpec
	confirm func(Event) bool
	result  chan submitResult
}

type submitResult struct {
	reply string
	err   error
}

// pendingCommand is the single command the wire owes an answer.
// Whichever side removes it from Client.pending under pendingMu owns
// delivering (or skipping) its resolution; resolve is buffered so the
// reader never blocks on it.
type pendingCommand struct {
	spec    CommandSpec
	confirm func(Event) bool
	resolve chan submitResult
}

type closeOnce struct {
	ch   chan struct{}
	once sync.Once
}

func newCloseOnce() *closeOnce       { return &closeOnce{ch: make(chan struct{})} }
func (c *closeOnce) Close()          { c.once.Do(func() { close(c.ch) }) }
func (c *closeOnce) Done() <-chan struct{} { return c.ch }

// Open starts a session over cfg.Transport. Unless SkipHandshake is
// set, it probes the panel with a state dump and fails with
// ErrConnectionFailed if no answer arrives; on failure the transport is
// closed.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrConnectionFailed)
	}
	table := cfg.Table
	if table == nil {
		table = DefaultCommandTable()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 32
	}
	var logger Logger = noopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	c := &Client{
		transport: cfg.Transport,
		table:     table,
		store:     newStateStore(),
		events:    newDispatcher(),
		logger:    logger,
		submitCh:  make(chan *submission, queueSize),
		done:      newCloseOnce(),
	}
	c.connected.Store(true)

	c.wg.Add(2)
	go c.readLoop()
	go c.commandLoop()

	if !cfg.SkipHandshake {
		if _, err := c.AllLoadStates(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("%w: handshake: %v", ErrConnectionFailed, err)
		}
	}

	c.logger.Info("session established")
	return c, nil
}

// Close shuts the session down: no new commands are accepted, queued
// and in-flight commands fail with ErrDisconnected, the reader stops,
// and the transport is released. Close is idempotent.
func (c *Client) Close() error {
	c.done.Close()
	err := c.transport.Close()
	c.wg.Wait()
	c.markLost()
	return err
}

// IsConnected reports whether the transport is still up.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Stats returns a snapshot of engine counters.
func (c *Client) Stats() Stats {
	return Stats{
		Connected:        c.connected.Load(),
		LinesReceived:    c.linesReceived.Load(),
		CommandsSent:     c.commandsSent.Load(),
		EventsDispatched: c.eventsDispatched.Load(),
		Anomalies:        c.anomalies.Load(),
	}
}

// State returns the device state cache. The returned store stays valid
// after Close but stops updating.
func (c *Client) State() *StateStore {
	return c.store
}

// Subscribe registers fn for every event, in wire order, and returns
// its cancel function. fn runs on the engine's reader goroutine; a slow
// subscriber delays line processing, so hand off to a channel if the
// work is heavy.
func (c *Client) Subscribe(fn func(Event)) func() {
	return c.events.subscribe(fn)
}

// readLoop is the only reader of the transport. It pulls lines in
// arrival order and hands each one to the classifier exactly once.
func (c *Client) readLoop() {
	defer c.wg.Done()
	for {
		line, err := c.transport.ReadLine()
		if err != nil {
			select {
			case <-c.done.Done():
			default:
				c.logger.Error("connection lost", "error", err)
			}
			c.done.Close()
			c.markLost()
			return
		}
		if line == "" {
			continue
		}
		c.linesReceived.Add(1)
		c.handleLine(line)
	}
}

// handleLine classifies one inbound line. Notification decoding runs
// first so a pushed event can never be swallowed as a stale reply; only
// a line that is not a notification may complete a reply-mode command.
func (c *Client) handleLine(line string) {
	if ev, ok := decodeNotification(line); ok {
		c.store.apply(ev)
		c.resolveOnEvent(ev)
		c.dispatch(ev)
		return
	}

	c.pendingMu.Lock()
	p := c.pending
	if p != nil && p.spec.Mode == CompleteOnReply && matchesShape(p.spec.Shape, line) {
		c.pending = nil
		c.pendingMu.Unlock()
		p.resolve <- submitResult{reply: line}
		return
	}
	c.pendingMu.Unlock()

	c.anomalies.Add(1)
	c.logger.Warn("unmatched line", "line", line)
}

// resolveOnEvent lets a decoded event confirm an in-flight actuation
// command. The event still reaches the store and every subscriber.
func (c *Client) resolveOnEvent(ev Event) {
	c.pendingMu.Lock()
	p := c.pending
	if p == nil || p.spec.Mode != CompleteOnEvent || p.confirm == nil || !p.confirm(ev) {
		c.pendingMu.Unlock()
		return
	}
	c.pending = nil
	c.pendingMu.Unlock()
	p.resolve <- submitResult{}
}

func (c *Client) dispatch(ev Event) {
	c.eventsDispatched.Add(1)
	c.logger.Debug("event", "kind", ev.Kind.String(), "index", ev.Index, "level", ev.Level)
	c.events.dispatch(ev, c.logger)
}

// markLost flips the session to disconnected and broadcasts a single
// synthetic connection-lost event. The store keeps its last known
// values.
func (c *Client) markLost() {
	c.lostOnce.Do(func() {
		c.connected.Store(false)
		c.failPending(ErrDisconnected)
		c.dispatch(Event{Kind: EventConnectionLost})
	})
}

func (c *Client) failPending(err error) {
	c.pendingMu.Lock()
	p := c.pending
	c.pending = nil
	c.pendingMu.Unlock()
	if p != nil {
		p.resolve <- submitResult{err: err}
	}
}

// commandLoop is the only writer of the transport. It drains the queue
// one command at a time and does not dequeue the next until the current
// one resolves, times out, or the session dies.
func (c *Client) commandLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done.Done():
			c.drainQueue()
			return
		case sub := <-c.submitCh:
			sub.result <- c.execute(sub)
		}
	}
}

// drainQueue fails everything behind the closed session.
func (c *Client) drainQueue() {
	for {
		select {
		case sub := <-c.submitCh:
			sub.result <- submitResult{err: ErrDisconnected}
		default:
			return
		}
	}
}

func (c *Client) execute(sub *submission) submitResult {
	p := &pendingCommand{
		spec:    sub.spec,
		confirm: sub.confirm,
		resolve: make(chan submitResult, 1),
	}
	if sub.spec.Mode != CompleteOnWrite {
		c.pendingMu.Lock()
		c.pending = p
		c.pendingMu.Unlock()
	}

	if err := c.transport.WriteLine(sub.text); err != nil {
		c.clearPending(p)
		c.logger.Error("write failed", "command", sub.text, "error", err)
		return submitResult{err: fmt.Errorf("%w: %v", ErrDisconnected, err)}
	}
	c.commandsSent.Add(1)
	c.logger.Debug("command sent", "command", sub.text)

	if sub.spec.Mode == CompleteOnWrite {
		return submitResult{}
	}

	timer := time.NewTimer(sub.spec.Timeout)
	defer timer.Stop()

	select {
	case res := <-p.resolve:
		return res
	case <-timer.C:
		if c.clearPending(p) {
			c.logger.Warn("command timed out", "command", sub.text)
			return submitResult{err: fmt.Errorf("%w: %s", ErrTimeout, sub.text)}
		}
		// The reader resolved it in the same instant; take that result.
		return <-p.resolve
	case <-c.done.Done():
		if c.clearPending(p) {
			return submitResult{err: ErrDisconnected}
		}
		return <-p.resolve
	}
}

// clearPending removes p from the pending slot if it still holds it.
// It reports true when this caller won ownership of p's resolution.
func (c *Client) clearPending(p *pendingCommand) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if c.pending == p {
		c.pending = nil
		return true
	}
	return false
}

// submit queues one command and waits for its outcome. Cancellation of
// ctx abandons the wait; the command itself still runs to resolution so
// the wire protocol stays in step.
func (c *Client) submit(ctx context.Context, text string, spec CommandSpec, confirm func(Event) bool) (string, error) {
	select {
	case <-c.done.Done():
		return "", ErrDisconnected
	default:
	}

	sub := &submission{
		text:    text,
		spec:    spec,
		confirm: confirm,
		result:  make(chan submitResult, 1),
	}

	select {
	case c.submitCh <- sub:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done.Done():
		return "", ErrDisconnected
	}

	select {
	case res := <-sub.result:
		return res.reply, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
