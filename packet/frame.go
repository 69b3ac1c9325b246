package packet

import (
	"encoding/binary"
	"time"

	"github.com/8bitGames/tl3600/internal/util"
)

// Frame control bytes shared by the codec and the transport handshake.
const (
	// STX marks the start of a frame.
	STX byte = 0x02

	// ETX marks the end of a frame, immediately before the checksum.
	ETX byte = 0x03

	// ACK is the single-byte positive handshake reply. It is never part of
	// a frame body; the transport treats a lone ACK byte as a handshake.
	ACK byte = 0x06

	// NACK is the single-byte negative handshake reply.
	NACK byte = 0x15
)

// Fixed header field widths and offsets.
const (
	// TerminalIDSize is the width of the terminal identifier field.
	TerminalIDSize = 16

	// TimestampSize is the width of the YYYYMMDDhhmmss timestamp field.
	TimestampSize = 14

	// HeaderSize is the fixed frame header size:
	// STX(1) + terminal ID(16) + timestamp(14) + job code(1) +
	// response code(1) + payload length(2).
	HeaderSize = 1 + TerminalIDSize + TimestampSize + 1 + 1 + 2

	// TrailerSize is ETX plus the BCC checksum byte.
	TrailerSize = 2

	// MinFrameSize is the smallest possible frame (empty payload).
	MinFrameSize = HeaderSize + TrailerSize

	// MaxPayloadSize is the largest payload length expressible on the wire.
	MaxPayloadSize = 0xFFFF

	offTerminalID = 1
	offTimestamp  = offTerminalID + TerminalIDSize
	offJobCode    = offTimestamp + TimestampSize
	offRespCode   = offJobCode + 1
	offPayloadLen = offRespCode + 1
	offPayload    = HeaderSize
)

// TimestampLayout is the time layout of the frame header timestamp.
const TimestampLayout = "20060102150405"

// Frame is one complete message exchanged with the terminal, parsed from or
// built for the wire. A Frame is never mutated after construction; it is
// owned by the call that produced it.
type Frame struct {
	// TerminalID is the 16-byte terminal identifier with trailing NUL
	// padding stripped.
	TerminalID string

	// Timestamp is the raw 14-digit YYYYMMDDhhmmss header field.
	Timestamp string

	// JobCode identifies the request/response kind of the frame.
	JobCode JobCode

	// RespCode is the reserved response code header byte (zero on send).
	RespCode byte

	// Payload is the variable-length frame body.
	Payload []byte

	// Checksum is the trailing BCC byte as read from the wire.
	Checksum byte

	// Valid reports whether the frame passed structural validation:
	// declared payload length consistent with the buffer, ETX at the
	// computed offset, and a matching BCC. The transport uses this flag
	// to decide between ACK and NACK; parsing itself never fails.
	Valid bool
}

// Checksum computes the BCC over data: the XOR of every byte.
//
// For a full frame the caller passes everything from STX through ETX
// inclusive; the result is the byte that follows ETX on the wire.
func Checksum(data []byte) byte {
	var bcc byte
	for _, b := range data {
		bcc ^= b
	}

	return bcc
}

// BuildFrame constructs a complete wire frame for the given terminal ID, job
// code and payload, stamped with the current local time.
//
// A terminal ID longer than 16 bytes is truncated; a shorter one is
// NUL-padded on the right. The payload may be nil for header-only frames.
func BuildFrame(terminalID string, job JobCode, payload []byte) []byte {
	return buildFrameAt(terminalID, job, payload, time.Now())
}

// buildFrameAt is the clock-injected core of BuildFrame, split out so tests
// can build frames with a fixed timestamp.
func buildFrameAt(terminalID string, job JobCode, payload []byte, ts time.Time) []byte {
	buf := make([]byte, HeaderSize+len(payload)+TrailerSize)

	buf[0] = STX
	putFixedASCII(buf[offTerminalID:offTimestamp], terminalID)
	copy(buf[offTimestamp:offJobCode], ts.Format(TimestampLayout))
	buf[offJobCode] = byte(job)
	buf[offRespCode] = 0
	binary.LittleEndian.PutUint16(buf[offPayloadLen:offPayload], uint16(len(payload))) //nolint:gosec // length capped by MaxPayloadSize
	copy(buf[offPayload:], payload)

	etxAt := offPayload + len(payload)
	buf[etxAt] = ETX
	buf[etxAt+1] = Checksum(buf[:etxAt+1])

	return buf
}

// ParseFrame decodes data into a Frame.
//
// Parsing never fails outright: structural problems (short buffer, bad
// sentinels, length mismatch, checksum mismatch) are reported through the
// Valid flag so the transport can NACK without losing the header fields it
// did manage to read.
func ParseFrame(data []byte) Frame {
	var f Frame

	if len(data) < MinFrameSize || data[0] != STX {
		return f
	}

	f.TerminalID = trimASCII(data[offTerminalID:offTimestamp])
	f.Timestamp = string(data[offTimestamp:offJobCode])
	f.JobCode = JobCode(data[offJobCode])
	f.RespCode = data[offRespCode]

	payloadLen := int(binary.LittleEndian.Uint16(data[offPayloadLen:offPayload]))
	total := HeaderSize + payloadLen + TrailerSize
	if len(data) < total {
		return f
	}

	f.Payload = util.CloneSlice(data[offPayload:offPayload+payloadLen], 0)

	etxAt := offPayload + payloadLen
	f.Checksum = data[etxAt+1]

	if data[etxAt] != ETX {
		return f
	}
	if Checksum(data[:etxAt+1]) != f.Checksum {
		return f
	}

	f.Valid = true

	return f
}

// FindCompleteFrame scans window for the first complete candidate frame.
//
// Returns (start, length) where start is the offset of the first STX and
// length is the total byte count of the candidate frame beginning there.
// length is 0 when no complete candidate is present yet:
//
//   - no STX in the window: start is -1;
//   - STX found but fewer bytes than a full header, or fewer than the
//     declared payload length requires, or no ETX at the computed offset:
//     start is the STX offset and length is 0 (keep buffering).
//
// The scanner never consumes bytes; it only measures. Checksum verification
// is left to [ParseFrame] on the extracted slice.
func FindCompleteFrame(window []byte) (start, length int) {
	start = -1
	for i, b := range window {
		if b == STX {
			start = i

			break
		}
	}

	if start < 0 {
		return -1, 0
	}

	rest := window[start:]
	if len(rest) < HeaderSize {
		return start, 0
	}

	payloadLen := int(binary.LittleEndian.Uint16(rest[offPayloadLen:offPayload]))
	total := HeaderSize + payloadLen + TrailerSize
	if len(rest) < total {
		return start, 0
	}

	if rest[offPayload+payloadLen] != ETX {
		// Declared length does not land on an ETX; not a plausible frame.
		return start, 0
	}

	return start, total
}
