package terminal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/8bitGames/tl3600/internal/pool"
	"github.com/8bitGames/tl3600/logger"
	"github.com/8bitGames/tl3600/packet"
)

// Sentinel errors for the terminal protocol engine.
var (
	ErrNotConnected     = errors.New("terminal: not connected")
	ErrAlreadyConnected = errors.New("terminal: already connected")
	ErrSendInFlight     = errors.New("terminal: another send is in flight")
	ErrRetriesExceeded  = errors.New("terminal: max retries exceeded")
	ErrResponseTimeout  = errors.New("terminal: response timeout")
	ErrClosing          = errors.New("terminal: connection closing")
)

// pendingWait is the single outstanding send's wait state. The receive
// reassembler resolves whichever pendingWait is registered; the send
// serialization rule guarantees there is at most one.
type pendingWait struct {
	// handshake receives the lone ACK or NACK byte.
	handshake chan byte

	// response receives the reassembled, checksum-valid response frame.
	response chan packet.Frame

	// wantResponse is false for fire-and-forget sends; a frame arriving
	// for such a send is delivered as an unexpected-frame notification.
	wantResponse bool
}

// Conn is a connection to a TL3600-class terminal over a duplex byte
// channel.
//
// All methods are safe for concurrent use, but sends are serialized: a Send
// while another is in flight fails with ErrSendInFlight rather than
// interleaving, because responses carry no correlation id and match sends
// purely by ordering.
type Conn struct {
	cfg    *Config
	logger logger.Logger

	// dial opens the underlying port; replaced in tests with an
	// in-memory double.
	dial func(*Config) (Port, error)

	portMutex sync.RWMutex
	port      Port

	connected atomic.Bool
	closing   atomic.Bool

	ctx        context.Context
	cancel     context.CancelFunc
	readerDone chan struct{}

	// sendMutex serializes Send; TryLock turns a concurrent send into
	// an immediate ErrSendInFlight instead of queueing it.
	sendMutex sync.Mutex

	pendingMutex sync.Mutex
	pending      *pendingWait

	// rxBuf accumulates inbound bytes between complete frames. Owned
	// exclusively by the reader goroutine.
	rxBuf []byte

	subscribers *xsync.MapOf[uint64, chan Notification]
	nextSubID   atomic.Uint64

	metrics ConnMetrics
}

// NewConn creates a terminal connection with the given configuration.
// The connection starts disconnected; call [Conn.Open].
func NewConn(cfg *Config) (*Conn, error) {
	if cfg == nil {
		return nil, errors.New("terminal: config is nil")
	}

	return &Conn{
		cfg:         cfg,
		logger:      cfg.logger,
		dial:        openSerialPort,
		subscribers: xsync.NewMapOf[uint64, chan Notification](),
	}, nil
}

// Open opens the serial port with the configured line parameters and starts
// the reader loop. Opening an already-open connection fails with
// ErrAlreadyConnected.
func (c *Conn) Open() error {
	if c.connected.Load() {
		return ErrAlreadyConnected
	}

	port, err := c.dial(c.cfg)
	if err != nil {
		return err
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.readerDone = make(chan struct{})
	c.rxBuf = c.rxBuf[:0]
	c.setPort(port)
	c.closing.Store(false)
	c.connected.Store(true)

	go c.readLoop()

	c.logger.Info("terminal: connected",
		"port", c.cfg.portName,
		"baudRate", c.cfg.baudRate)
	c.publish(Notification{Kind: NotifyConnected})

	return nil
}

// Close cancels any pending send, closes the port, and waits for the reader
// loop to stop. Closing a connection that is not open is a no-op.
func (c *Conn) Close() error {
	if !c.connected.Load() {
		return nil
	}

	c.closing.Store(true)

	// Cancel first so an in-flight Send fails with ErrClosing and
	// releases its timers before the port goes away.
	c.cancel()
	c.closePort()

	<-c.readerDone

	c.connected.Store(false)
	c.logger.Info("terminal: disconnected", "port", c.cfg.portName)
	c.publish(Notification{Kind: NotifyDisconnected})

	return nil
}

// IsConnected reports whether the connection is open.
func (c *Conn) IsConnected() bool {
	return c.connected.Load()
}

// Metrics returns the connection's metrics.
func (c *Conn) Metrics() *ConnMetrics {
	return &c.metrics
}

// --- Port access ---

func (c *Conn) setPort(p Port) {
	c.portMutex.Lock()
	defer c.portMutex.Unlock()

	c.port = p
}

func (c *Conn) getPort() Port {
	c.portMutex.RLock()
	defer c.portMutex.RUnlock()

	return c.port
}

func (c *Conn) closePort() {
	c.portMutex.Lock()
	port := c.port
	c.port = nil
	c.portMutex.Unlock()

	if port == nil {
		return
	}

	if err := port.Close(); err != nil {
		c.logger.Error("terminal: failed to close port", "error", err)
	}
}

// --- Low-level writes ---

func (c *Conn) writeByte(b byte) error {
	port := c.getPort()
	if port == nil {
		return ErrNotConnected
	}

	_, err := port.Write([]byte{b})

	return err
}

// writeFrame writes all frame bytes and drains the output buffer so the
// handshake timer does not start while bytes are still queued locally.
func (c *Conn) writeFrame(data []byte) error {
	port := c.getPort()
	if port == nil {
		return ErrNotConnected
	}

	for written := 0; written < len(data); {
		n, err := port.Write(data[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return port.Drain()
}

// --- Send protocol ---

// sendResult classifies the outcome of a single write-and-await-ACK attempt
// so the retry loop can decide whether to retry or abort.
type sendResult int

const (
	sendOK    sendResult = iota // Frame written and ACK'd.
	sendRetry                   // Retryable failure (NACK or ACK timeout).
	sendAbort                   // Non-retryable failure (write error, cancellation).
)

// Send transmits a built frame and, when expectResponse is true, waits for
// the terminal's response frame.
//
// The handshake is retried up to the configured retry limit on NACK or ACK
// timeout. A response-wait timeout is NOT retried: with the handshake ACK'd
// the transaction may already be running on the card network, and resending
// could charge the customer twice. The caller decides how to recover.
//
// The returned frame is checksum-valid but its payload is not yet decoded;
// use the packet decoders for the frame's job code.
func (c *Conn) Send(ctx context.Context, frameBytes []byte, expectResponse bool) (*packet.Frame, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}

	if !c.sendMutex.TryLock() {
		return nil, ErrSendInFlight
	}
	defer c.sendMutex.Unlock()

	pending := &pendingWait{
		handshake:    make(chan byte, 1),
		response:     make(chan packet.Frame, 1),
		wantResponse: expectResponse,
	}

	c.setPending(pending)
	defer c.setPending(nil)

	for attempt := 0; attempt <= c.cfg.retryLimit; attempt++ {
		if attempt > 0 {
			c.metrics.incSendRetryCount()
			c.logger.Debug("terminal: send retry",
				"attempt", attempt,
				"retryLimit", c.cfg.retryLimit)
		}

		result, err := c.writeAndAwaitAck(ctx, pending, frameBytes)

		switch result {
		case sendOK:
			c.metrics.incFrameSendCount()

			if !expectResponse {
				return nil, nil //nolint:nilnil
			}

			return c.awaitResponse(ctx, pending)

		case sendRetry:
			continue

		case sendAbort:
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %d attempts", ErrRetriesExceeded, c.cfg.retryLimit+1)
}

// writeAndAwaitAck performs one attempt: write the frame, drain, and wait
// for the single-byte handshake within the ACK timeout.
func (c *Conn) writeAndAwaitAck(ctx context.Context, pending *pendingWait, frameBytes []byte) (sendResult, error) {
	// Discard a stale handshake byte from a previous attempt so it
	// cannot satisfy this attempt's wait.
	select {
	case <-pending.handshake:
	default:
	}

	if err := c.writeFrame(frameBytes); err != nil {
		return sendAbort, fmt.Errorf("terminal: write frame: %w", err)
	}

	ackTimer := pool.GetTimer(c.cfg.ackTimeout)
	defer pool.PutTimer(ackTimer)

	select {
	case <-ctx.Done():
		return sendAbort, ctx.Err()

	case <-c.ctx.Done():
		return sendAbort, ErrClosing

	case <-ackTimer.C:
		c.metrics.incAckTimeoutCount()
		c.logger.Debug("terminal: ACK timeout", "timeout", c.cfg.ackTimeout)

		return sendRetry, nil

	case b := <-pending.handshake:
		if b == packet.ACK {
			return sendOK, nil
		}

		c.metrics.incNackRecvCount()
		c.logger.Debug("terminal: NACK received")

		return sendRetry, nil
	}
}

// awaitResponse waits for the reassembler to deliver the response frame,
// then acknowledges it on the wire.
func (c *Conn) awaitResponse(ctx context.Context, pending *pendingWait) (*packet.Frame, error) {
	respTimer := pool.GetTimer(c.cfg.responseTimeout)
	defer pool.PutTimer(respTimer)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case <-c.ctx.Done():
		return nil, ErrClosing

	case <-respTimer.C:
		c.logger.Warn("terminal: response timeout",
			"timeout", c.cfg.responseTimeout)

		return nil, ErrResponseTimeout

	case frame := <-pending.response:
		// Acknowledge receipt. A failed ACK write is logged but does
		// not discard the result; the caller already has a valid
		// transaction outcome.
		if err := c.writeByte(packet.ACK); err != nil {
			c.logger.Warn("terminal: failed to ACK response frame", "error", err)
		}

		return &frame, nil
	}
}

func (c *Conn) setPending(p *pendingWait) {
	c.pendingMutex.Lock()
	defer c.pendingMutex.Unlock()

	c.pending = p
}

// --- Receive reassembly ---

// readLoop reads chunks off the port and feeds them through the
// reassembler until the port closes or fails.
func (c *Conn) readLoop() {
	defer close(c.readerDone)

	buf := make([]byte, c.cfg.readBufferSize)

	for {
		port := c.getPort()
		if port == nil {
			return
		}

		n, err := port.Read(buf)
		if n > 0 {
			c.handleChunk(buf[:n])
		}

		if err != nil {
			if c.closing.Load() {
				return
			}

			c.logger.Error("terminal: port read failed", "error", err)
			c.connected.Store(false)
			// Unblock any in-flight send; its wait would dangle
			// forever with the port gone.
			c.cancel()
			c.closePort()
			c.publish(Notification{Kind: NotifyDisconnected, Err: err})

			return
		}
	}
}

// handleChunk is invoked for every inbound byte chunk.
//
// A chunk of exactly one ACK or NACK byte is a handshake signal and never
// enters the frame buffer. Everything else accumulates until the codec's
// completeness scanner reports a full candidate frame.
func (c *Conn) handleChunk(chunk []byte) {
	if len(chunk) == 1 && (chunk[0] == packet.ACK || chunk[0] == packet.NACK) {
		c.resolveHandshake(chunk[0])

		return
	}

	c.rxBuf = append(c.rxBuf, chunk...)

	// Multiple frames may arrive back-to-back in one chunk; keep
	// extracting until the scanner reports nothing complete.
	for {
		start, length := packet.FindCompleteFrame(c.rxBuf)

		if start < 0 {
			// No start sentinel anywhere: line noise, drop it all.
			if len(c.rxBuf) > 0 {
				c.logger.Debug("terminal: discarding noise bytes", "count", len(c.rxBuf))
			}
			c.rxBuf = c.rxBuf[:0]

			return
		}

		if start > 0 {
			// Garbage before the start sentinel: partial prior frame
			// or line noise.
			c.logger.Debug("terminal: discarding bytes before start sentinel", "count", start)
			c.rxBuf = append(c.rxBuf[:0], c.rxBuf[start:]...)

			continue
		}

		if length == 0 {
			// Incomplete frame; wait for more bytes.
			return
		}

		frame := packet.ParseFrame(c.rxBuf[:length])
		c.rxBuf = append(c.rxBuf[:0], c.rxBuf[length:]...)

		c.dispatchFrame(frame)
	}
}

// resolveHandshake delivers an ACK/NACK byte to the pending send's
// handshake wait, if one exists.
func (c *Conn) resolveHandshake(b byte) {
	c.pendingMutex.Lock()
	defer c.pendingMutex.Unlock()

	if c.pending == nil {
		c.logger.Debug("terminal: handshake byte with no pending send",
			"byte", fmt.Sprintf("0x%02X", b))

		return
	}

	select {
	case c.pending.handshake <- b:
	default:
		// A handshake byte is already queued for this attempt; the
		// duplicate is dropped.
	}
}

// dispatchFrame routes one extracted candidate frame.
func (c *Conn) dispatchFrame(frame packet.Frame) {
	if !frame.Valid {
		c.logger.Warn("terminal: malformed frame, sending NACK",
			"jobCode", frame.JobCode.String())
		c.metrics.incNackSentCount()

		if err := c.writeByte(packet.NACK); err != nil {
			c.logger.Error("terminal: failed to send NACK", "error", err)
		}

		return
	}

	c.metrics.incFrameRecvCount()

	if frame.JobCode.IsEvent() {
		// Unsolicited device notification; bypasses the handshake
		// entirely, so no ACK is written.
		c.metrics.incEventCount()
		c.publish(Notification{Kind: NotifyEvent, Frame: frame})

		return
	}

	c.pendingMutex.Lock()
	pending := c.pending
	c.pendingMutex.Unlock()

	if pending != nil && pending.wantResponse {
		select {
		case pending.response <- frame:
			return
		default:
			// Response slot already filled; fall through to the
			// unexpected-frame path.
		}
	}

	c.metrics.incUnexpectedFrameCount()
	c.logger.Warn("terminal: frame received with no pending send",
		"jobCode", frame.JobCode.String())
	c.publish(Notification{Kind: NotifyUnexpectedFrame, Frame: frame})
}
