package terminal

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/8bitGames/tl3600/packet"
)

// fakePort is an in-memory Port double. Tests push inbound chunks with
// deliver and observe outbound bytes via written / waitWrite.
type fakePort struct {
	readCh chan []byte

	mu      sync.Mutex
	written []byte

	writeSignal chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakePort() *fakePort {
	return &fakePort{
		readCh:      make(chan []byte, 16),
		writeSignal: make(chan struct{}, 64),
		closed:      make(chan struct{}),
	}
}

func (p *fakePort) Read(buf []byte) (int, error) {
	select {
	case chunk := <-p.readCh:
		return copy(buf, chunk), nil
	case <-p.closed:
		return 0, io.ErrClosedPipe
	}
}

func (p *fakePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	p.written = append(p.written, data...)
	p.mu.Unlock()

	select {
	case p.writeSignal <- struct{}{}:
	default:
	}

	return len(data), nil
}

func (p *fakePort) Drain() error { return nil }

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })

	return nil
}

// deliver pushes one inbound chunk to the engine's reader loop.
func (p *fakePort) deliver(chunk []byte) {
	p.readCh <- chunk
}

// writtenBytes returns a snapshot of everything written to the port.
func (p *fakePort) writtenBytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]byte, len(p.written))
	copy(out, p.written)

	return out
}

// waitWrite blocks until the engine performs a write, failing the test
// after a timeout.
func (p *fakePort) waitWrite(t *testing.T) {
	t.Helper()

	select {
	case <-p.writeSignal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a port write")
	}
}

// newTestConfig creates a Config with short timeouts suitable for tests.
func newTestConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()

	defaults := []Option{
		WithTerminalID("TERM0001"),
		WithAckTimeout(MinAckTimeout),           // 100ms
		WithResponseTimeout(MinResponseTimeout), // 1s
	}

	cfg, err := NewConfig("fake0", append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestConfig: %v", err)
	}

	return cfg
}

// newTestConn creates an open Conn backed by a fakePort.
func newTestConn(t *testing.T, opts ...Option) (*Conn, *fakePort) {
	t.Helper()

	cfg := newTestConfig(t, opts...)

	conn, err := NewConn(cfg)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}

	fp := newFakePort()
	conn.dial = func(*Config) (Port, error) { return fp, nil }

	if err := conn.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	t.Cleanup(func() { _ = conn.Close() })

	return conn, fp
}

// makeApprovalResponseFrame builds a complete, checksum-valid approval
// response frame the way the terminal hardware would.
func makeApprovalResponseFrame(t *testing.T, amount string, rejected bool, acquirerField string) []byte {
	t.Helper()

	txType := byte('0')
	if rejected {
		txType = '1'
	}

	pad := func(s string, width int) []byte {
		b := make([]byte, width)
		n := copy(b, s)
		for i := n; i < width; i++ {
			b[i] = ' '
		}

		return b
	}

	p := make([]byte, 0, packet.ApprovalResponseSize)
	p = append(p, txType, 'I')
	p = append(p, pad("9410-12**-****-3456", 20)...)
	p = append(p, amount...)                   // amount (10, caller-provided)
	p = append(p, "00000000"...)               // tax
	p = append(p, "00000000"...)               // service charge
	p = append(p, "00"...)                     // installments
	p = append(p, pad("30012345", 12)...)      // approval number
	p = append(p, "260314150926"...)           // sales date + time
	p = append(p, pad("TXN0001", 12)...)       // transaction id
	p = append(p, pad("MERCHANT01", 15)...)    // merchant id
	p = append(p, pad("TERMNO01", 10)...)      // terminal number
	p = append(p, pad("11SHINHAN CARD", 20)...)
	p = append(p, pad(acquirerField, 20)...)

	if len(p) != packet.ApprovalResponseSize {
		t.Fatalf("bad test payload size: got %d, want %d", len(p), packet.ApprovalResponseSize)
	}

	return packet.BuildFrame("TERM0001", packet.JobApprovalResponse, p)
}

// makeEventFrame builds an unsolicited event frame.
func makeEventFrame(eventType byte) []byte {
	return packet.BuildFrame("TERM0001", packet.JobEventResponse, []byte{eventType})
}
