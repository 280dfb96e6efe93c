package domain

import "time"

// TimeSlot is a bookable session of the studio day (e.g. 10:00-12:00).
type TimeSlot struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	StartTime string    `json:"start_time"` // "15:04"
	EndTime   string    `json:"end_time"`
	Price     int       `json:"price" validate:"gte=0"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (TimeSlot) TableName() string { return "time_slots" }

// Extra is an optional add-on (extra outfits, retouched photos, etc.).
type Extra struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Price     int       `json:"price" validate:"gte=0"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (Extra) TableName() string { return "extras" }

type Coupon struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	Code            string     `json:"code" gorm:"uniqueIndex"`
	DiscountPercent int        `json:"discount_percent" validate:"gte=0,lte=100"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	Active          bool       `json:"active" gorm:"default:true"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (Coupon) TableName() string { return "coupons" }

// OpeningHours is the weekly schedule row for one weekday (0 = Sunday).
type OpeningHours struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Closed    bool   `json:"closed"`
}

func (OpeningHours) TableName() string { return "opening_hours" }
