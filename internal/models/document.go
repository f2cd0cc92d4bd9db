package models

import "time"

// DocumentEvent событие о загруженном или осиротевшем документе.
type DocumentEvent struct {
	UserID    string    `json:"user_id"`
	Slot      string    `json:"slot"`
	Path      string    `json:"path"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LicenseReminder сообщение в очередь уведомлений об истечении удостоверения.
type LicenseReminder struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LicenseNumber  string `json:"license_num"`
	ExpirationDate string `json:"expiration_date"`
	DaysLeft       int    `json:"days_left"`
}
