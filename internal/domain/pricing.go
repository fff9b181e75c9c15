package domain

import "errors"

const (
	DefaultEventFee = 100

	// Every complete group of this many selected events earns one free event.
	eventsPerFreeEvent = 3
)

var ErrInvalidPricingInput = errors.New("event count and fees must not be negative")

type Pricing struct {
	TotalEvents    int `json:"totalEvents"`
	FreeEvents     int `json:"freeEvents"`
	OriginalAmount int `json:"originalAmount"`
	DiscountAmount int `json:"discountAmount"`
	FinalAmount    int `json:"finalAmount"`
}

// CalculateFlatPricing prices count events that all cost feePerEvent.
func CalculateFlatPricing(count, feePerEvent int) (Pricing, error) {
	if count < 0 || feePerEvent < 0 {
		return Pricing{}, ErrInvalidPricingInput
	}

	free := count / eventsPerFreeEvent
	original := count * feePerEvent
	final := (count - free) * feePerEvent

	return Pricing{
		TotalEvents:    count,
		FreeEvents:     free,
		OriginalAmount: original,
		DiscountAmount: original - final,
		FinalAmount:    final,
	}, nil
}

// CalculatePricing prices a selection of events with possibly different fees.
// Each free event is worth the average fee of the selection, rounded half up
// to whole currency units. For a homogeneous selection the result equals
// CalculateFlatPricing.
func CalculatePricing(fees []int) (Pricing, error) {
	n := len(fees)
	if n == 0 {
		return Pricing{}, nil
	}

	sum := 0
	for _, fee := range fees {
		if fee < 0 {
			return Pricing{}, ErrInvalidPricingInput
		}
		sum += fee
	}

	free := n / eventsPerFreeEvent
	discount := (2*free*sum + n) / (2 * n)

	return Pricing{
		TotalEvents:    n,
		FreeEvents:     free,
		OriginalAmount: sum,
		DiscountAmount: discount,
		FinalAmount:    sum - discount,
	}, nil
}

func PricingForEvents(events []Event) (Pricing, error) {
	fees := make([]int, len(events))
	for i, e := range events {
		fees[i] = e.RegistrationFee
	}

	return CalculatePricing(fees)
}
