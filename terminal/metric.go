package terminal

import (
	"sync/atomic"
)

// ConnMetrics contains atomic metrics for a terminal connection.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ConnMetrics struct {
	// FrameSendCount indicates the number of frames sent and ACK'd.
	FrameSendCount atomic.Uint64
	// FrameRecvCount indicates the number of valid frames received.
	FrameRecvCount atomic.Uint64
	// SendRetryCount indicates the total number of handshake retries.
	SendRetryCount atomic.Uint64
	// AckTimeoutCount indicates handshake waits that expired without a byte.
	AckTimeoutCount atomic.Uint64
	// NackSentCount indicates NACK bytes written for malformed frames.
	NackSentCount atomic.Uint64
	// NackRecvCount indicates NACK handshake replies received.
	NackRecvCount atomic.Uint64
	// EventCount indicates unsolicited event frames received.
	EventCount atomic.Uint64
	// UnexpectedFrameCount indicates valid frames received with no wait pending.
	UnexpectedFrameCount atomic.Uint64
	// DroppedNotifyCount indicates notifications dropped on slow subscribers.
	DroppedNotifyCount atomic.Uint64
}

func (m *ConnMetrics) incFrameSendCount()       { m.FrameSendCount.Add(1) }
func (m *ConnMetrics) incFrameRecvCount()       { m.FrameRecvCount.Add(1) }
func (m *ConnMetrics) incSendRetryCount()       { m.SendRetryCount.Add(1) }
func (m *ConnMetrics) incAckTimeoutCount()      { m.AckTimeoutCount.Add(1) }
func (m *ConnMetrics) incNackSentCount()        { m.NackSentCount.Add(1) }
func (m *ConnMetrics) incNackRecvCount()        { m.NackRecvCount.Add(1) }
func (m *ConnMetrics) incEventCount()           { m.EventCount.Add(1) }
func (m *ConnMetrics) incUnexpectedFrameCount() { m.UnexpectedFrameCount.Add(1) }
func (m *ConnMetrics) incDroppedNotifyCount()   { m.DroppedNotifyCount.Add(1) }
