package packet

import "fmt"

// Approval request payload field widths, in wire order.
const (
	approvalAmountWidth      = 10
	approvalTaxWidth         = 8
	approvalSvcChargeWidth   = 8
	approvalInstallmentWidth = 2

	// ApprovalRequestSize is the fixed payload size of an approval request:
	// txType(1) + amount(10) + tax(8) + svcCharge(8) + installments(2) +
	// signature(1).
	ApprovalRequestSize = 1 + approvalAmountWidth + approvalTaxWidth +
		approvalSvcChargeWidth + approvalInstallmentWidth + 1
)

// Cancel request payload field widths.
const (
	cancelApprovalNoWidth = 12
	cancelOrigDateWidth   = 8
	cancelOrigTimeWidth   = 6
	cancelExtraLenWidth   = 2

	// CancelRequestBaseSize is the fixed portion of a cancel request
	// payload; the additional-info bytes follow it.
	CancelRequestBaseSize = 1 + 1 + approvalAmountWidth + approvalTaxWidth +
		approvalSvcChargeWidth + approvalInstallmentWidth + 1 +
		cancelApprovalNoWidth + cancelOrigDateWidth + cancelOrigTimeWidth +
		cancelExtraLenWidth

	// maxCancelExtraLen is the largest additional-info length expressible
	// in the 2-digit decimal count prefix.
	maxCancelExtraLen = 99
)

// ApprovalRequest holds the business parameters of a card approval.
//
// Amounts are in the terminal's minor currency unit (KRW has none, so whole
// won). SignaturePresent tells the terminal whether the kiosk collected a
// signature for the transaction.
type ApprovalRequest struct {
	TransactionType  TransactionType
	Amount           int64
	Tax              int64
	ServiceCharge    int64
	InstallmentCount int
	SignaturePresent bool
}

// CancelRequest holds the business parameters of a cancellation.
//
// ApprovalNumber, OriginalDate (YYYYMMDD) and OriginalTime (hhmmss) identify
// the transaction being cancelled. AdditionalInfo carries card-less cancel
// keys, wallet barcodes or cash-receipt authorization numbers; it is
// length-prefixed on the wire with a 2-digit decimal count.
type CancelRequest struct {
	CancelType       CancelType
	TransactionType  TransactionType
	Amount           int64
	Tax              int64
	ServiceCharge    int64
	InstallmentCount int
	SignaturePresent bool
	ApprovalNumber   string
	OriginalDate     string
	OriginalTime     string
	AdditionalInfo   string
}

func signatureByte(present bool) byte {
	if present {
		return '1'
	}

	return '0'
}

// BuildApprovalRequest encodes req into the fixed 30-byte approval request
// payload.
//
// Numeric values whose decimal representation exceeds their field width are
// rejected with [ErrValueTooLarge] rather than silently truncated.
func BuildApprovalRequest(req ApprovalRequest) ([]byte, error) {
	buf := make([]byte, ApprovalRequestSize)

	buf[0] = byte(req.TransactionType)
	off := 1

	for _, f := range []struct {
		name  string
		width int
		value int64
	}{
		{"amount", approvalAmountWidth, req.Amount},
		{"tax", approvalTaxWidth, req.Tax},
		{"serviceCharge", approvalSvcChargeWidth, req.ServiceCharge},
		{"installmentCount", approvalInstallmentWidth, int64(req.InstallmentCount)},
	} {
		if err := putNumeric(buf[off:off+f.width], f.value); err != nil {
			return nil, fmt.Errorf("packet: approval request %s: %w", f.name, err)
		}
		off += f.width
	}

	buf[off] = signatureByte(req.SignaturePresent)

	return buf, nil
}

// BuildCancelRequest encodes req into a cancel request payload of
// CancelRequestBaseSize + len(AdditionalInfo) bytes.
//
// The approval number is space-padded and left-aligned, unlike the
// zero-padded numeric fields; the asymmetry is part of the wire contract.
func BuildCancelRequest(req CancelRequest) ([]byte, error) {
	if len(req.AdditionalInfo) > maxCancelExtraLen {
		return nil, fmt.Errorf("%w: additional info is %d bytes, max %d",
			ErrValueTooLarge, len(req.AdditionalInfo), maxCancelExtraLen)
	}

	buf := make([]byte, CancelRequestBaseSize+len(req.AdditionalInfo))

	buf[0] = byte(req.CancelType)
	buf[1] = byte(req.TransactionType)
	off := 2

	for _, f := range []struct {
		name  string
		width int
		value int64
	}{
		{"amount", approvalAmountWidth, req.Amount},
		{"tax", approvalTaxWidth, req.Tax},
		{"serviceCharge", approvalSvcChargeWidth, req.ServiceCharge},
		{"installmentCount", approvalInstallmentWidth, int64(req.InstallmentCount)},
	} {
		if err := putNumeric(buf[off:off+f.width], f.value); err != nil {
			return nil, fmt.Errorf("packet: cancel request %s: %w", f.name, err)
		}
		off += f.width
	}

	buf[off] = signatureByte(req.SignaturePresent)
	off++

	putSpacePadded(buf[off:off+cancelApprovalNoWidth], req.ApprovalNumber)
	off += cancelApprovalNoWidth

	putSpacePadded(buf[off:off+cancelOrigDateWidth], req.OriginalDate)
	off += cancelOrigDateWidth

	putSpacePadded(buf[off:off+cancelOrigTimeWidth], req.OriginalTime)
	off += cancelOrigTimeWidth

	if err := putNumeric(buf[off:off+cancelExtraLenWidth], int64(len(req.AdditionalInfo))); err != nil {
		return nil, fmt.Errorf("packet: cancel request additionalInfo length: %w", err)
	}
	off += cancelExtraLenWidth

	copy(buf[off:], req.AdditionalInfo)

	return buf, nil
}

// NewApprovalFrame builds a complete approval request frame for terminalID.
func NewApprovalFrame(terminalID string, req ApprovalRequest) ([]byte, error) {
	payload, err := BuildApprovalRequest(req)
	if err != nil {
		return nil, err
	}

	return BuildFrame(terminalID, JobApprovalRequest, payload), nil
}

// NewCancelFrame builds a complete cancel request frame for terminalID.
func NewCancelFrame(terminalID string, req CancelRequest) ([]byte, error) {
	payload, err := BuildCancelRequest(req)
	if err != nil {
		return nil, err
	}

	return BuildFrame(terminalID, JobCancelRequest, payload), nil
}
