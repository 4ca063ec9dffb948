package backend

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Action selects the attendance endpoint.
type Action string

const (
	ActionCheckIn  Action = "checkIn"
	ActionCheckOut Action = "checkOut"
)

func (a Action) String() string {
	return string(a)
}

func (a Action) path() string {
	return "/api/" + string(a)
}

type loginRequest struct {
	BadgeNumber string `json:"badgeNumber"`
	Password    string `json:"password"`
}

// LoginResponse is the body of a 200 from /api/login. Both fields are
// optional on the wire.
type LoginResponse struct {
	Message     *string `json:"message"`
	BadgeNumber *string `json:"badgeNumber"`
}

type verifyRequest struct {
	TOTPCode string `json:"totpCode"`
}

// VerifyResponse is the body of a 200 from /api/verify-totp.
type VerifyResponse struct {
	Message     string `json:"message"`
	BadgeNumber string `json:"badgeNumber"`
	Name        string `json:"name"`
}

// CheckRequest is the attendance submission payload. Built fresh per
// submission, never reused.
type CheckRequest struct {
	BadgeNumber string  `json:"badgeNumber"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MobileModel string  `json:"mobileModel"`
	MobileOS    string  `json:"mobileOS"`
}

// TimesheetEntry is one day of the timesheet as the backend reports it.
// All fields arrive as strings; formatting is the display layer's problem.
type TimesheetEntry struct {
	DayDate      string `json:"dayDate"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	TotalMinutes string `json:"totalMinutes"`
}

// Login sends badge and password. Any previously stored token rides along,
// which lets the backend renew a still-valid prior session.
func (c *Client) Login(ctx context.Context, badgeNumber, password string) (*Reply, error) {
	return c.post(ctx, "/api/login", loginRequest{BadgeNumber: badgeNumber, Password: password})
}

// VerifyTOTP submits the one-time passcode for the pending session.
func (c *Client) VerifyTOTP(ctx context.Context, code string) (*Reply, error) {
	return c.post(ctx, "/api/verify-totp", verifyRequest{TOTPCode: code})
}

// Logout ends the backend session. The caller clears local state no matter
// what comes back.
func (c *Client) Logout(ctx context.Context) (*Reply, error) {
	return c.post(ctx, "/api/logout", nil)
}

// SubmitAttendance posts a check-in or check-out event.
func (c *Client) SubmitAttendance(ctx context.Context, action Action, req CheckRequest) (*Reply, error) {
	return c.post(ctx, action.path(), req)
}

// Timesheet fetches the raw timesheet rows for the authenticated employee.
func (c *Client) Timesheet(ctx context.Context) (*Reply, error) {
	return c.post(ctx, "/api/timesheet", nil)
}

// DecodeLogin parses a 200 login body.
func DecodeLogin(body []byte) (*LoginResponse, error) {
	var lr LoginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, errors.Wrap(err, "[DecodeLogin] decoding response")
	}
	return &lr, nil
}

// DecodeVerify parses a 200 verify-totp body.
func DecodeVerify(body []byte) (*VerifyResponse, error) {
	var vr VerifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, errors.Wrap(err, "[DecodeVerify] decoding response")
	}
	return &vr, nil
}

// DecodeTimesheet parses a 200 timesheet body, preserving server order.
func DecodeTimesheet(body []byte) ([]TimesheetEntry, error) {
	var entries []TimesheetEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errors.Wrap(err, "[DecodeTimesheet] decoding response")
	}
	return entries, nil
}
