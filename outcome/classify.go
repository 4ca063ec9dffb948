package outcome

import "encoding/json"

const (
	msgServerError        = "server error, try again later"
	msgUnexpectedResponse = "unexpected response"
	msgInvalidCode        = "invalid code"
	msgRequestRejected    = "request rejected"
)

// envelope is the common body shape of every backend response.
type envelope struct {
	Message *string `json:"message"`
}

// Classify maps a transport result to a semantic Outcome. It is a pure
// function shared by the auth flow and the attendance pipeline.
//
// On a 401 the caller must clear its stored session token; Classify only
// names the condition.
func Classify(status int, body []byte, transportErr error) Outcome {
	if transportErr != nil {
		return Transport(transportErr.Error())
	}

	switch status {
	case 200:
		msg, ok := decodeMessage(body)
		if !ok {
			// A 200 whose body fails to decode is a transport problem,
			// never silently ignored.
			return Transport(msgUnexpectedResponse)
		}
		return Accept(msg)
	case 401:
		return Expired()
	case 400:
		if msg, ok := decodeMessage(body); ok {
			return Reject(msg)
		}
		return Reject(msgRequestRejected)
	case 403:
		return Reject(msgInvalidCode)
	case 500:
		return Transport(msgServerError)
	default:
		return Transport(msgUnexpectedResponse)
	}
}

func decodeMessage(body []byte) (string, bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message == nil {
		return "", false
	}
	return *env.Message, true
}
