package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildApprovalPayload assembles an approval response payload from its
// fixed-width fields using the same offsets as the decoder.
func buildApprovalPayload(t *testing.T, txType, media byte, issuerField, acquirerField string) []byte {
	t.Helper()

	p := make([]byte, 0, ApprovalResponseSize)
	p = append(p, txType, media)
	p = append(p, []byte("9410-12**-****-3456 ")...) // card number (20)
	p = append(p, []byte("0000005000")...)           // amount (10)
	p = append(p, []byte("00000454")...)             // tax (8)
	p = append(p, []byte("00000000")...)             // service charge (8)
	p = append(p, []byte("00")...)                   // installments (2)
	p = append(p, []byte("30012345    ")...)         // approval number (12)
	p = append(p, []byte("260314")...)               // sales date (6)
	p = append(p, []byte("150926")...)               // sales time (6)
	p = append(p, []byte("TXN000000001")...)         // transaction id (12)
	p = append(p, []byte("MERCHANT0000001")...)      // merchant id (15)
	p = append(p, []byte("TERMNO0001")...)           // terminal number (10)

	issuer := make([]byte, respNameFieldWidth)
	putSpacePadded(issuer, issuerField)
	p = append(p, issuer...)

	acquirer := make([]byte, respNameFieldWidth)
	putSpacePadded(acquirer, acquirerField)
	p = append(p, acquirer...)

	require.Len(t, p, ApprovalResponseSize)

	return p
}

// --- Approval response ---

func TestDecodeApprovalResponse_Approved(t *testing.T) {
	payload := buildApprovalPayload(t, '0', 'I', "11SHINHAN CARD", "21BC CARD")

	r := DecodeApprovalResponse(payload)

	assert.Equal(t, ResponseApproved, r.TransactionType)
	assert.Equal(t, MediaIC, r.TransactionMedia)
	assert.Equal(t, "9410-12**-****-3456", r.CardNumber)
	assert.Equal(t, int64(5000), r.ApprovedAmount)
	assert.Equal(t, int64(454), r.Tax)
	assert.Equal(t, int64(0), r.ServiceCharge)
	assert.Equal(t, 0, r.InstallmentCount)
	assert.Equal(t, "30012345", r.ApprovalNumber)
	assert.Equal(t, "260314", r.SalesDate)
	assert.Equal(t, "150926", r.SalesTime)
	assert.Equal(t, "TXN000000001", r.TransactionID)
	assert.Equal(t, "MERCHANT0000001", r.MerchantID)
	assert.Equal(t, "TERMNO0001", r.TerminalNumber)

	// On approval the two 20-byte fields split into code(2)+name(18).
	assert.Equal(t, "11", r.IssuerCode)
	assert.Equal(t, "SHINHAN CARD", r.IssuerName)
	assert.Equal(t, "21", r.AcquirerCode)
	assert.Equal(t, "BC CARD", r.AcquirerName)

	assert.False(t, r.IsRejected)
	assert.Empty(t, r.RejectCode)
	assert.Empty(t, r.RejectMessage)
}

func TestDecodeApprovalResponse_RejectedKnownCode(t *testing.T) {
	payload := buildApprovalPayload(t, '1', 'I', "DECLINED", "-07SOME TEXT")

	r := DecodeApprovalResponse(payload)

	require.True(t, r.IsRejected)
	assert.Equal(t, "07", r.RejectCode)

	friendly, ok := ErrorMessage("07")
	require.True(t, ok)
	assert.Equal(t, friendly, r.RejectMessage, "table message replaces the raw text")

	assert.Empty(t, r.IssuerCode)
	assert.Empty(t, r.AcquirerName)
}

func TestDecodeApprovalResponse_RejectedUnknownCode(t *testing.T) {
	payload := buildApprovalPayload(t, '1', 'R', "DECLINED", "-99CALL ISSUER")

	r := DecodeApprovalResponse(payload)

	require.True(t, r.IsRejected)
	assert.Equal(t, "99", r.RejectCode)
	assert.Equal(t, "CALL ISSUER", r.RejectMessage, "code prefix stripped, raw message kept")
}

func TestDecodeApprovalResponse_RejectedNoCode(t *testing.T) {
	payload := buildApprovalPayload(t, '1', 'I', "CARD DECLINED", "")

	r := DecodeApprovalResponse(payload)

	require.True(t, r.IsRejected)
	assert.Empty(t, r.RejectCode)
	assert.Equal(t, "CARD DECLINED", r.RejectMessage, "issuer field carries the raw message")
}

func TestDecodeApprovalResponse_ShortPayload(t *testing.T) {
	// Decoders must stay total on truncated payloads.
	assert.NotPanics(t, func() {
		r := DecodeApprovalResponse([]byte("0I"))
		assert.Equal(t, ResponseApproved, r.TransactionType)
		assert.Equal(t, MediaIC, r.TransactionMedia)
		assert.Empty(t, r.CardNumber)
	})

	assert.NotPanics(t, func() {
		_ = DecodeApprovalResponse(nil)
	})
}

// --- Card inquiry response ---

func TestDecodeCardInquiryResponse(t *testing.T) {
	p := make([]byte, 0, 57)
	p = append(p, 'R', 'P')
	p = append(p, []byte("9410-12**-****-3456 ")...)
	p = append(p, []byte("20260314150926")...)
	p = append(p, []byte("0000005000")...)
	p = append(p, []byte("0000042000")...)
	p = append(p, '0')

	r := DecodeCardInquiryResponse(p)

	assert.Equal(t, MediaRF, r.TransactionMedia)
	assert.Equal(t, byte('P'), r.CardType)
	assert.Equal(t, "9410-12**-****-3456", r.CardNumber)
	assert.Equal(t, "20260314150926", r.LastTransactionDateTime)
	assert.Equal(t, int64(5000), r.LastTransactionAmount)
	assert.Equal(t, int64(42000), r.CardBalance)
	assert.Equal(t, byte('0'), r.TransactionStatus)
}

// --- Device check response ---

func TestDecodeDeviceCheckResponse(t *testing.T) {
	r := DecodeDeviceCheckResponse([]byte("0010"))

	assert.Equal(t, DeviceOK, r.CardReader)
	assert.Equal(t, DeviceOK, r.ICModule)
	assert.Equal(t, DeviceError, r.Printer)
	assert.Equal(t, DeviceOK, r.Network)
	assert.False(t, r.AllOK())

	assert.True(t, DecodeDeviceCheckResponse([]byte("0000")).AllOK())
}

func TestDecodeDeviceCheckResponse_Short(t *testing.T) {
	r := DecodeDeviceCheckResponse([]byte("0"))

	assert.Equal(t, DeviceOK, r.CardReader)
	assert.Equal(t, DeviceUnknown, r.ICModule, "missing fields decode to Unknown")
}

// --- Event response ---

func TestDecodeEventResponse(t *testing.T) {
	assert.Equal(t, EventCardInserted, DecodeEventResponse([]byte("I")).EventType)
	assert.Equal(t, EventCardRemoved, DecodeEventResponse([]byte("O")).EventType)
	assert.Equal(t, EventUnknown, DecodeEventResponse([]byte("?")).EventType)
	assert.Equal(t, EventUnknown, DecodeEventResponse(nil).EventType)
}
