package packet

// errorMessages maps the terminal's 2-character error codes to user-facing
// messages. The table only humanizes rejection payloads; codes outside the
// table keep the raw localized message from the terminal.
var errorMessages = map[string]string{
	"01": "Card read error. Please try again.",
	"02": "Card expired.",
	"03": "Card not supported.",
	"04": "Transaction declined by issuer.",
	"05": "Insufficient balance.",
	"06": "Exceeds transaction limit.",
	"07": "Communication error with card network.",
	"08": "Terminal not registered.",
	"09": "Invalid merchant.",
	"10": "Duplicate transaction.",
	"11": "Original transaction not found.",
	"12": "Already cancelled.",
	"13": "Password retry limit exceeded.",
	"14": "IC chip read failed. Use swipe.",
	"15": "Transaction timed out. Please retry.",
}

// ErrorMessage returns the user-facing message for a 2-character terminal
// error code. ok is false when the code is not in the table.
func ErrorMessage(code string) (msg string, ok bool) {
	msg, ok = errorMessages[code]

	return msg, ok
}
