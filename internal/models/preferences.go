package models

import "time"

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type DevicePreferences struct {
	DeviceID        string    `json:"device_id"`
	MembershipToken *string   `json:"-"`
	LastLoginID     *string   `json:"last_login_id"`
	Theme           string    `json:"theme"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
