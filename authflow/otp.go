package authflow

const otpLength = 6

// NormalizeOTP strips non-digit characters and truncates the result to six
// digits. This is a contract on the input field, not the transport: the
// controller sends codes as given. Normalization is idempotent.
func NormalizeOTP(raw string) string {
	digits := make([]byte, 0, otpLength)
	for i := 0; i < len(raw) && len(digits) < otpLength; i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	return string(digits)
}

// ValidOTP reports whether code is exactly six ASCII digits. A shorter
// code is never submittable.
func ValidOTP(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
