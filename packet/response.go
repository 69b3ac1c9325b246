package packet

import "strings"

// Approval response payload field widths, cumulative from offset 0:
// txType(1) media(1) cardNumber(20) amount(10) tax(8) svcCharge(8)
// installments(2) approvalNo(12) salesDate(6) salesTime(6) transactionID(12)
// merchantID(15) terminalNo(10) issuerField(20) acquirerField(20).
const (
	respCardNumberWidth = 20
	respApprovalNoWidth = 12
	respDateWidth       = 6
	respTimeWidth       = 6
	respTxIDWidth       = 12
	respMerchantIDWidth = 15
	respTerminalNoWidth = 10
	respNameFieldWidth  = 20

	// ApprovalResponseSize is the fixed approval response payload size.
	ApprovalResponseSize = 1 + 1 + respCardNumberWidth + approvalAmountWidth +
		approvalTaxWidth + approvalSvcChargeWidth + approvalInstallmentWidth +
		respApprovalNoWidth + respDateWidth + respTimeWidth + respTxIDWidth +
		respMerchantIDWidth + respTerminalNoWidth + 2*respNameFieldWidth
)

// ApprovalResponse is the decoded payload of a [JobApprovalResponse] frame,
// produced for both approval and cancel requests.
//
// IsRejected distinguishes a business-level decline from a protocol failure:
// a rejected response is still a structurally valid, checksum-correct frame.
// Callers must treat IsRejected as the transaction outcome, never as a
// transport error.
type ApprovalResponse struct {
	TransactionType  ResponseType
	TransactionMedia Media
	CardNumber       string
	ApprovedAmount   int64
	Tax              int64
	ServiceCharge    int64
	InstallmentCount int
	ApprovalNumber   string
	SalesDate        string // YYMMDD
	SalesTime        string // hhmmss
	TransactionID    string
	MerchantID       string
	TerminalNumber   string
	IssuerCode       string
	IssuerName       string
	AcquirerCode     string
	AcquirerName     string

	IsRejected    bool
	RejectCode    string
	RejectMessage string
}

// CardInquiryResponse is the decoded payload of a [JobCardInquiryResponse]
// frame: media(1) cardType(1) cardNumber(20) lastTxDateTime(14)
// lastTxAmount(10) balance(10) status(1).
type CardInquiryResponse struct {
	TransactionMedia        Media
	CardType                byte
	CardNumber              string
	LastTransactionDateTime string // YYYYMMDDhhmmss
	LastTransactionAmount   int64
	CardBalance             int64
	TransactionStatus       byte
}

// DeviceCheckResponse is the decoded payload of a [JobDeviceCheckResponse]
// frame: four single-character module statuses.
type DeviceCheckResponse struct {
	CardReader DeviceStatus
	ICModule   DeviceStatus
	Printer    DeviceStatus
	Network    DeviceStatus
}

// AllOK reports whether every module status is DeviceOK.
func (r DeviceCheckResponse) AllOK() bool {
	return r.CardReader == DeviceOK && r.ICModule == DeviceOK &&
		r.Printer == DeviceOK && r.Network == DeviceOK
}

// EventResponse is the decoded payload of an unsolicited [JobEventResponse]
// frame.
type EventResponse struct {
	EventType EventType
}

func byteField(payload []byte, off int) byte {
	f := field(payload, off, 1)
	if len(f) == 0 {
		return 0
	}

	return f[0]
}

// DecodeApprovalResponse decodes the payload of an approval (or cancel)
// response frame.
//
// The two trailing 20-byte fields are contextual. On approval they carry
// issuer and acquirer code(2)+name(18) pairs. On rejection the issuer field
// carries a raw localized rejection message, and the acquirer field
// optionally carries a hyphen-prefixed 2-character error code followed by a
// message; when the code is in the error table, the table's friendlier
// message replaces the raw text.
func DecodeApprovalResponse(payload []byte) ApprovalResponse {
	var r ApprovalResponse

	off := 0
	r.TransactionType = ResponseTypeFromByte(byteField(payload, off))
	off++
	r.TransactionMedia = MediaFromByte(byteField(payload, off))
	off++
	r.CardNumber = trimASCII(field(payload, off, respCardNumberWidth))
	off += respCardNumberWidth
	r.ApprovedAmount = numericField(payload, off, approvalAmountWidth)
	off += approvalAmountWidth
	r.Tax = numericField(payload, off, approvalTaxWidth)
	off += approvalTaxWidth
	r.ServiceCharge = numericField(payload, off, approvalSvcChargeWidth)
	off += approvalSvcChargeWidth
	r.InstallmentCount = int(numericField(payload, off, approvalInstallmentWidth))
	off += approvalInstallmentWidth
	r.ApprovalNumber = trimASCII(field(payload, off, respApprovalNoWidth))
	off += respApprovalNoWidth
	r.SalesDate = trimASCII(field(payload, off, respDateWidth))
	off += respDateWidth
	r.SalesTime = trimASCII(field(payload, off, respTimeWidth))
	off += respTimeWidth
	r.TransactionID = trimASCII(field(payload, off, respTxIDWidth))
	off += respTxIDWidth
	r.MerchantID = trimASCII(field(payload, off, respMerchantIDWidth))
	off += respMerchantIDWidth
	r.TerminalNumber = trimASCII(field(payload, off, respTerminalNoWidth))
	off += respTerminalNoWidth

	issuerField := field(payload, off, respNameFieldWidth)
	off += respNameFieldWidth
	acquirerField := field(payload, off, respNameFieldWidth)

	r.IsRejected = r.TransactionType == ResponseRejected

	if !r.IsRejected {
		r.IssuerCode = trimASCII(field(issuerField, 0, 2))
		r.IssuerName = trimText(field(issuerField, 2, respNameFieldWidth-2))
		r.AcquirerCode = trimASCII(field(acquirerField, 0, 2))
		r.AcquirerName = trimText(field(acquirerField, 2, respNameFieldWidth-2))

		return r
	}

	r.RejectMessage = trimText(issuerField)

	code, msg := decodeRejectField(acquirerField)
	if code != "" {
		r.RejectCode = code
		r.RejectMessage = msg
	}

	return r
}

// decodeRejectField interprets the acquirer field of a rejected response.
//
// The field is either empty or "-XX<message>" where XX is a 2-character
// terminal error code. A code present in the error table substitutes the
// table's message; otherwise the raw localized message is kept with the
// "-XX" prefix stripped.
func decodeRejectField(raw []byte) (code, msg string) {
	text := trimText(raw)
	if !strings.HasPrefix(text, "-") || len(text) < 3 {
		return "", ""
	}

	code = text[1:3]
	if friendly, ok := ErrorMessage(code); ok {
		return code, friendly
	}

	return code, strings.TrimSpace(text[3:])
}

// DecodeCardInquiryResponse decodes the payload of a card-inquiry response
// frame.
func DecodeCardInquiryResponse(payload []byte) CardInquiryResponse {
	var r CardInquiryResponse

	off := 0
	r.TransactionMedia = MediaFromByte(byteField(payload, off))
	off++
	r.CardType = byteField(payload, off)
	off++
	r.CardNumber = trimASCII(field(payload, off, respCardNumberWidth))
	off += respCardNumberWidth
	r.LastTransactionDateTime = trimASCII(field(payload, off, TimestampSize))
	off += TimestampSize
	r.LastTransactionAmount = numericField(payload, off, approvalAmountWidth)
	off += approvalAmountWidth
	r.CardBalance = numericField(payload, off, approvalAmountWidth)
	off += approvalAmountWidth
	r.TransactionStatus = byteField(payload, off)

	return r
}

// DecodeDeviceCheckResponse decodes the payload of a device-check response
// frame.
func DecodeDeviceCheckResponse(payload []byte) DeviceCheckResponse {
	return DeviceCheckResponse{
		CardReader: DeviceStatusFromByte(byteField(payload, 0)),
		ICModule:   DeviceStatusFromByte(byteField(payload, 1)),
		Printer:    DeviceStatusFromByte(byteField(payload, 2)),
		Network:    DeviceStatusFromByte(byteField(payload, 3)),
	}
}

// DecodeEventResponse decodes the payload of an unsolicited event frame.
func DecodeEventResponse(payload []byte) EventResponse {
	return EventResponse{
		EventType: EventTypeFromByte(byteField(payload, 0)),
	}
}
