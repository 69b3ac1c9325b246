package packet

// JobCode is the single ASCII character in the frame header identifying the
// request/response kind.
type JobCode byte

const (
	// JobApprovalRequest asks the terminal to run a card approval.
	JobApprovalRequest JobCode = 'A'

	// JobCancelRequest asks the terminal to cancel a prior approval.
	JobCancelRequest JobCode = 'C'

	// JobApprovalResponse carries the result of an approval or cancel
	// request.
	JobApprovalResponse JobCode = 'R'

	// JobCardInquiryResponse carries the result of a card balance inquiry.
	JobCardInquiryResponse JobCode = 'I'

	// JobDeviceCheckResponse carries the terminal's module self-check
	// statuses.
	JobDeviceCheckResponse JobCode = 'D'

	// JobEventResponse is an unsolicited device-originated notification
	// (card inserted, card removed, ...). It bypasses the request/response
	// handshake entirely: the transport fans it out without sending ACK.
	JobEventResponse JobCode = 'E'
)

// IsEvent reports whether the job code marks an unsolicited event frame.
func (j JobCode) IsEvent() bool { return j == JobEventResponse }

func (j JobCode) String() string {
	switch j {
	case JobApprovalRequest:
		return "ApprovalRequest"
	case JobCancelRequest:
		return "CancelRequest"
	case JobApprovalResponse:
		return "ApprovalResponse"
	case JobCardInquiryResponse:
		return "CardInquiryResponse"
	case JobDeviceCheckResponse:
		return "DeviceCheckResponse"
	case JobEventResponse:
		return "EventResponse"
	default:
		return "Unknown(" + string(rune(j)) + ")"
	}
}

// ResponseType classifies a transaction response as approved or rejected.
type ResponseType byte

const (
	ResponseApproved ResponseType = '0'
	ResponseRejected ResponseType = '1'

	// ResponseUnknown is the fallback for unrecognized wire codes;
	// decoding never panics on a code outside the closed set.
	ResponseUnknown ResponseType = 0
)

// ResponseTypeFromByte maps a wire byte to its ResponseType, falling back to
// ResponseUnknown.
func ResponseTypeFromByte(b byte) ResponseType {
	switch ResponseType(b) {
	case ResponseApproved, ResponseRejected:
		return ResponseType(b)
	default:
		return ResponseUnknown
	}
}

func (r ResponseType) String() string {
	switch r {
	case ResponseApproved:
		return "Approved"
	case ResponseRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Media identifies the physical transaction medium reported by the terminal.
type Media byte

const (
	MediaIC      Media = 'I' // contact IC chip
	MediaRF      Media = 'R' // contactless RF or magnetic stripe
	MediaMobile  Media = 'M' // mobile wallet / barcode
	MediaUnknown Media = 0
)

// MediaFromByte maps a wire byte to its Media, falling back to MediaUnknown.
func MediaFromByte(b byte) Media {
	switch Media(b) {
	case MediaIC, MediaRF, MediaMobile:
		return Media(b)
	default:
		return MediaUnknown
	}
}

func (m Media) String() string {
	switch m {
	case MediaIC:
		return "IC"
	case MediaRF:
		return "RF/MS"
	case MediaMobile:
		return "Mobile"
	default:
		return "Unknown"
	}
}

// DeviceStatus is a single module status character from a device-check
// response.
type DeviceStatus byte

const (
	DeviceOK      DeviceStatus = '0'
	DeviceError   DeviceStatus = '1'
	DeviceAbsent  DeviceStatus = '2'
	DeviceUnknown DeviceStatus = 0
)

// DeviceStatusFromByte maps a wire byte to its DeviceStatus, falling back to
// DeviceUnknown.
func DeviceStatusFromByte(b byte) DeviceStatus {
	switch DeviceStatus(b) {
	case DeviceOK, DeviceError, DeviceAbsent:
		return DeviceStatus(b)
	default:
		return DeviceUnknown
	}
}

func (d DeviceStatus) String() string {
	switch d {
	case DeviceOK:
		return "OK"
	case DeviceError:
		return "Error"
	case DeviceAbsent:
		return "Absent"
	default:
		return "Unknown"
	}
}

// EventType classifies an unsolicited event frame.
type EventType byte

const (
	EventCardInserted EventType = 'I'
	EventCardRemoved  EventType = 'O'
	EventFallback     EventType = 'F' // IC read failed, terminal fell back to swipe
	EventUnknown      EventType = 0
)

// EventTypeFromByte maps a wire byte to its EventType, falling back to
// EventUnknown.
func EventTypeFromByte(b byte) EventType {
	switch EventType(b) {
	case EventCardInserted, EventCardRemoved, EventFallback:
		return EventType(b)
	default:
		return EventUnknown
	}
}

func (e EventType) String() string {
	switch e {
	case EventCardInserted:
		return "CardInserted"
	case EventCardRemoved:
		return "CardRemoved"
	case EventFallback:
		return "Fallback"
	default:
		return "Unknown"
	}
}

// CancelType selects the cancellation flavor in a cancel request.
type CancelType byte

const (
	// CancelWithCard cancels with the original card present.
	CancelWithCard CancelType = '0'

	// CancelCardless cancels without the card; the original approval is
	// identified through the additional-info field.
	CancelCardless CancelType = '1'
)

// TransactionType selects the transaction flavor in approval and cancel
// requests and echoes back in responses.
type TransactionType byte

const (
	TransactionCredit      TransactionType = '1'
	TransactionCashIC      TransactionType = '2'
	TransactionCashReceipt TransactionType = '3'
)
