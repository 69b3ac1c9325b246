// Package packet implements the binary frame codec for TL3600-class card
// payment terminals.
//
// The codec is pure: it builds outgoing request frames, parses and validates
// incoming response frames, and decodes response payloads into typed records.
// It performs no I/O; the terminal package drives the serial line and feeds
// byte windows through [FindCompleteFrame].
//
// # Wire Format
//
// A frame on the wire is:
//
//	[STX(1)][TerminalID(16)][Timestamp(14)][JobCode(1)][RespCode(1)][Len(2,LE)][Payload(n)][ETX(1)][BCC(1)]
//
// The terminal ID is ASCII, left-aligned and NUL-padded to 16 bytes. The
// timestamp is 14 ASCII digits (YYYYMMDDhhmmss). The payload length is an
// unsigned 16-bit little-endian integer. BCC is the exclusive-OR of every
// byte from STX through ETX inclusive.
//
// Numeric request fields (amounts, tax, installment counts) are encoded as
// right-aligned, zero-padded decimal ASCII digit strings because the terminal
// firmware expects human-readable decimal fields, not binary integers.
// Approval numbers are the one exception: left-aligned and space-padded.
//
// Localized text in response payloads is EUC-KR encoded. Decoding degrades
// to a plain ASCII interpretation when the bytes are not valid EUC-KR; it
// never fails.
package packet
