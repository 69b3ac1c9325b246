package terminal

import (
	"context"
	"errors"
	"fmt"

	"github.com/8bitGames/tl3600/packet"
)

// ErrUnexpectedJobCode reports a response frame whose job code does not
// match the request that was sent. With no correlation id on the wire this
// is the only cross-check available.
var ErrUnexpectedJobCode = errors.New("terminal: unexpected response job code")

// Approve runs a card approval end to end: build the request frame with the
// configured terminal ID, send it, and decode the response payload.
//
// A decoded response with IsRejected set is a successful call: the frame was
// delivered and decoded, the card was declined. Protocol failures (retries
// exhausted, response timeout, disconnect) come back as errors.
func (c *Conn) Approve(ctx context.Context, req packet.ApprovalRequest) (packet.ApprovalResponse, error) {
	data, err := packet.NewApprovalFrame(c.cfg.terminalID, req)
	if err != nil {
		return packet.ApprovalResponse{}, err
	}

	frame, err := c.Send(ctx, data, true)
	if err != nil {
		return packet.ApprovalResponse{}, err
	}

	if frame.JobCode != packet.JobApprovalResponse {
		return packet.ApprovalResponse{}, fmt.Errorf("%w: got %s, want %s",
			ErrUnexpectedJobCode, frame.JobCode, packet.JobApprovalResponse)
	}

	return packet.DecodeApprovalResponse(frame.Payload), nil
}

// CancelTransaction cancels a prior approval. The response payload shares
// the approval-response layout and decoder.
func (c *Conn) CancelTransaction(ctx context.Context, req packet.CancelRequest) (packet.ApprovalResponse, error) {
	data, err := packet.NewCancelFrame(c.cfg.terminalID, req)
	if err != nil {
		return packet.ApprovalResponse{}, err
	}

	frame, err := c.Send(ctx, data, true)
	if err != nil {
		return packet.ApprovalResponse{}, err
	}

	if frame.JobCode != packet.JobApprovalResponse {
		return packet.ApprovalResponse{}, fmt.Errorf("%w: got %s, want %s",
			ErrUnexpectedJobCode, frame.JobCode, packet.JobApprovalResponse)
	}

	return packet.DecodeApprovalResponse(frame.Payload), nil
}
