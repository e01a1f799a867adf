package models

import "time"

// Device class names reported to the backend.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
)

// Device describes the client making a login request. Fields that could not
// be derived from the user agent are nil and serialize as JSON null.
type Device struct {
	Browser        *string   `json:"browser"`
	BrowserVersion *string   `json:"browserVersion"`
	OS             *string   `json:"os"`
	OSVersion      *string   `json:"osVersion"`
	DeviceType     string    `json:"deviceType"`
	LastLogin      time.Time `json:"lastLogin"`
	DeviceID       string    `json:"deviceId"`
}
