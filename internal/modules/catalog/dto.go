package catalog

import "studiobooking/internal/domain"

// SlotAvailability is one time slot on a given date with its booked state.
type SlotAvailability struct {
	Slot  domain.TimeSlot `json:"slot"`
	Taken bool            `json:"taken"`
}

type AvailabilityResponse struct {
	Date   string             `json:"date"`
	Closed bool               `json:"closed"`
	Slots  []SlotAvailability `json:"slots"`
}
