// Package terminal implements the transport/protocol engine for TL3600-class
// card payment terminals over a serial line.
//
// The engine owns the connect/disconnect lifecycle, a send/ACK/response state
// machine with bounded retries and timeouts, and a receive reassembler that
// turns the continuous inbound byte stream into discrete validated frames via
// the packet codec.
//
// # Send Protocol
//
// [Conn.Send] writes a built frame, drains the line, and waits for a
// single-byte handshake within the ACK timeout. NACK or silence retries the
// write, up to the configured retry limit. Once ACK'd, a send that expects a
// reply waits for a complete checksum-valid frame within the response
// timeout; the engine acknowledges the received frame with an ACK byte and
// hands it to the caller.
//
// A timed-out response wait deliberately does NOT resend: the transaction
// may already be in flight on the card network, and a blind resend risks a
// double charge. Only the ACK handshake is retried.
//
// # Concurrency Contract
//
// No correlation identifier exists on the wire, so responses match sends
// purely by ordering. The engine therefore serializes sends: at most one is
// in flight, and a concurrent [Conn.Send] fails with ErrSendInFlight. The
// single pending wait is an explicit slot owned by the Conn; the receive
// reassembler resolves whatever is pending.
//
// Unsolicited event frames and frames arriving with no pending wait are
// fanned out to subscribers as [Notification] values instead of being
// dropped.
package terminal
