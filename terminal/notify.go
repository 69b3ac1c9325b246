package terminal

import (
	"github.com/8bitGames/tl3600/packet"
)

// NotificationKind enumerates the engine's outbound notifications.
type NotificationKind int

const (
	// NotifyConnected fires after the port opens and the reader starts.
	NotifyConnected NotificationKind = iota

	// NotifyDisconnected fires when the connection closes, whether by
	// Close or by a port read failure.
	NotifyDisconnected

	// NotifyEvent carries an unsolicited device-originated frame.
	NotifyEvent

	// NotifyUnexpectedFrame carries a valid frame that arrived while no
	// send was waiting for a response.
	NotifyUnexpectedFrame
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyConnected:
		return "Connected"
	case NotifyDisconnected:
		return "Disconnected"
	case NotifyEvent:
		return "Event"
	case NotifyUnexpectedFrame:
		return "UnexpectedFrame"
	default:
		return "Unknown"
	}
}

// Notification is one outbound engine notification. Frame is set for
// NotifyEvent and NotifyUnexpectedFrame; Err is set when a disconnect was
// caused by a port failure.
type Notification struct {
	Kind  NotificationKind
	Frame packet.Frame
	Err   error
}

// Subscribe registers a notification channel with the given buffer size and
// returns its registration id along with the receive side.
//
// Delivery is non-blocking: a subscriber whose buffer is full loses that
// notification (counted in ConnMetrics.DroppedNotifyCount). Subscribers that
// care about every event should size their buffer accordingly and drain
// promptly.
func (c *Conn) Subscribe(buffer int) (uint64, <-chan Notification) {
	if buffer < 1 {
		buffer = 1
	}

	id := c.nextSubID.Add(1)
	ch := make(chan Notification, buffer)
	c.subscribers.Store(id, ch)

	return id, ch
}

// Unsubscribe removes a previously registered notification channel. The
// channel is not closed; pending notifications may still be read from it.
func (c *Conn) Unsubscribe(id uint64) {
	c.subscribers.Delete(id)
}

// publish fans a notification out to all subscribers without blocking the
// protocol loop.
func (c *Conn) publish(n Notification) {
	c.subscribers.Range(func(id uint64, ch chan Notification) bool {
		select {
		case ch <- n:
		default:
			c.metrics.incDroppedNotifyCount()
			c.logger.Debug("terminal: notification dropped on slow subscriber",
				"subscriber", id,
				"kind", n.Kind.String())
		}

		return true
	})
}
