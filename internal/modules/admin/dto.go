package admin

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type ResendEmailRequest struct {
	Template string `json:"template" binding:"required"`
}

type PolicyRuleInput struct {
	DaysBefore int `json:"days_before"`
	FeePercent int `json:"fee_percent"`
}

type ReplacePolicyRequest struct {
	Rules []PolicyRuleInput `json:"rules"`
}

type TimeSlotRequest struct {
	Name      string `json:"name" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Price     int    `json:"price"`
	Active    *bool  `json:"active"`
}

type ExtraRequest struct {
	Name   string `json:"name" binding:"required"`
	Price  int    `json:"price"`
	Active *bool  `json:"active"`
}

type CouponRequest struct {
	Code            string `json:"code" binding:"required"`
	DiscountPercent int    `json:"discount_percent"`
	ValidUntil      string `json:"valid_until"` // "2006-01-02", empty = no expiry
	Active          *bool  `json:"active"`
}

type OpeningHoursRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Closed    bool   `json:"closed"`
}
