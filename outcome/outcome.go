// Package outcome defines the single result channel shared by the
// authentication flow and the attendance pipeline. Every network call,
// guard failure or device problem resolves to exactly one Outcome value;
// callers inspect nothing else.
package outcome

// Kind discriminates the outcome taxonomy.
type Kind int

const (
	// Accepted carries the server's success message.
	Accepted Kind = iota
	// Rejected is a user-input or policy problem surfaced verbatim; the
	// user corrects and retries.
	Rejected
	// SessionExpired means the backend refused the session token. The
	// caller is responsible for clearing the stored token.
	SessionExpired
	// PolicyBlocked is an environmental condition (e.g. an active VPN)
	// the user must change before retrying.
	PolicyBlocked
	// DeviceCapabilityFailure is a local hardware or user-interaction
	// problem: missing location fix, unavailable or failed local
	// authentication.
	DeviceCapabilityFailure
	// TransportFailure means no usable response was obtained. Retried
	// only if the user re-triggers the action, never automatically.
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case SessionExpired:
		return "session expired"
	case PolicyBlocked:
		return "policy blocked"
	case DeviceCapabilityFailure:
		return "device capability failure"
	case TransportFailure:
		return "transport failure"
	}
	return "unknown"
}

// Outcome is a terminal result with a user-facing message.
type Outcome struct {
	Kind    Kind
	Message string
}

func Accept(message string) Outcome {
	return Outcome{Kind: Accepted, Message: message}
}

func Reject(message string) Outcome {
	return Outcome{Kind: Rejected, Message: message}
}

func Expired() Outcome {
	return Outcome{Kind: SessionExpired, Message: "session expired, log in again"}
}

func Blocked(reason string) Outcome {
	return Outcome{Kind: PolicyBlocked, Message: reason}
}

func CapabilityFailure(reason string) Outcome {
	return Outcome{Kind: DeviceCapabilityFailure, Message: reason}
}

func Transport(detail string) Outcome {
	return Outcome{Kind: TransportFailure, Message: detail}
}
