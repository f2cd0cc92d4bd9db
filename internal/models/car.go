package models

import "time"

// Статусы автомобиля в автопарке.
const (
	CarAvailable   = "available"
	CarRented      = "rented"
	CarMaintenance = "maintenance"
)

// Car автомобиль автопарка вместе с галереей.
type Car struct {
	ID           int        `json:"id"`
	Brand        string     `json:"brand"`
	Model        string     `json:"model"`
	Year         int        `json:"year"`
	Category     string     `json:"category"`
	Energy       string     `json:"energy"`
	Gearbox      string     `json:"gearbox"`
	HP           int        `json:"hp"`
	Acceleration string     `json:"accel"`
	Seats        int        `json:"seats"`
	PricePerDay  float64    `json:"price"`
	Deposit      float64    `json:"deposit"`
	KmIncluded   int        `json:"km"`
	Plate        string     `json:"plate"`
	Status       string     `json:"status"`
	Features     []string   `json:"features"`
	Images       []CarImage `json:"images"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CoverURL возвращает URL обложки или пустую строку.
func (c Car) CoverURL() string {
	for _, img := range c.Images {
		if img.IsCover {
			return img.URL
		}
	}
	return ""
}

// CarImage фотография автомобиля в публичном бакете.
type CarImage struct {
	ID       string `json:"id"`
	CarID    int    `json:"car_id"`
	URL      string `json:"url"`
	Path     string `json:"path"`
	Position int    `json:"position"`
	IsCover  bool   `json:"is_cover"`
}

// CarInput данные формы создания и редактирования автомобиля.
type CarInput struct {
	Brand        string   `json:"brand" validate:"required"`
	Model        string   `json:"model" validate:"required"`
	Year         int      `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Category     string   `json:"category"`
	Energy       string   `json:"energy"`
	Gearbox      string   `json:"gearbox"`
	HP           int      `json:"hp" validate:"gte=0"`
	Acceleration string   `json:"accel"`
	Seats        int      `json:"seats" validate:"gte=0,lte=9"`
	PricePerDay  float64  `json:"price" validate:"required,gt=0"`
	Deposit      float64  `json:"deposit" validate:"gte=0"`
	KmIncluded   int      `json:"km" validate:"gte=0"`
	Plate        string   `json:"plate"`
	Status       string   `json:"status" validate:"omitempty,oneof=available rented maintenance"`
	Features     []string `json:"features"`
}

// StatusInput тело запроса смены статуса автомобиля.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=available rented maintenance"`
}

// DashboardKPIs показатели панели администратора.
type DashboardKPIs struct {
	FleetSize        int     `json:"fleetSize"`
	Available        int     `json:"available"`
	Rented           int     `json:"rented"`
	Maintenance      int     `json:"maintenance"`
	OccupancyRate    float64 `json:"occupancyRate"`
	AverageDailyRate float64 `json:"averageDailyRate"`
	NewClients       int     `json:"newClients"`
	PendingLicenses  int     `json:"pendingLicenses"`
}
