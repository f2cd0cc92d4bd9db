// Package models содержит доменные структуры портала: профиль клиента,
// водительское удостоверение, автомобили автопарка и события документов.
package models

import (
	"errors"
	"time"
)

// ErrRecordNotFound возвращается хранилищем, если у пользователя ещё нет записи.
var ErrRecordNotFound = errors.New("record not found")

// Record строка таблицы clients в именах колонок (snake_case).
// Значения: string, bool или nil (NULL).
type Record map[string]any

// ProfileForm состояние формы профиля в именах полей интерфейса (camelCase).
// Текстовые поля и даты по умолчанию пустые строки, пути к документам nil.
type ProfileForm struct {
	UserID                string  `json:"id"`
	Email                 string  `json:"email" validate:"omitempty,email"`
	FirstName             string  `json:"firstName" validate:"required,max=100"`
	LastName              string  `json:"lastName" validate:"required,max=100"`
	PhoneNumber           string  `json:"phoneNumber" validate:"omitempty,max=20"`
	DateOfBirth           string  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address               string  `json:"address" validate:"max=255"`
	City                  string  `json:"city" validate:"max=100"`
	ZipCode               string  `json:"zipCode" validate:"max=20"`
	Country               string  `json:"country" validate:"max=100"`
	LicenseNumber         string  `json:"licenseNumber" validate:"max=50"`
	LicenseObtainedDate   string  `json:"licenseObtainedDate" validate:"omitempty,datetime=2006-01-02"`
	LicenseExpirationDate string  `json:"licenseExpirationDate" validate:"omitempty,datetime=2006-01-02"`
	LicenseFrontPath      *string `json:"licenseFrontPath"`
	LicenseBackPath       *string `json:"licenseBackPath"`
	IsPro                 bool    `json:"isPro"`
	IsVIP                 bool    `json:"isVip"`
}

// LicenseInfo данные водительского удостоверения для точечного обновления.
type LicenseInfo struct {
	Number         string `json:"licenseNumber" validate:"required,max=50"`
	ObtainedDate   string `json:"licenseObtainedDate" validate:"omitempty,datetime=2006-01-02"`
	ExpirationDate string `json:"licenseExpirationDate" validate:"omitempty,datetime=2006-01-02"`
}

// SignedURL временная ссылка на приватный документ. Нигде не сохраняется.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LicenseExpiry клиент, у которого скоро истекает удостоверение.
type LicenseExpiry struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LicenseNumber  string    `json:"license_num"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// ClientStats агрегаты по клиентам для панели администратора.
type ClientStats struct {
	Total           int `json:"total"`
	NewLastWeek     int `json:"newLastWeek"`
	PendingLicenses int `json:"pendingLicenses"`
}
