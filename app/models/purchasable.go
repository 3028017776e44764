package models

import "time"

// Purchasable is a domain object whose visibility is gated on a successful
// payment. Listings and advertisements both implement it so the payment
// reconciler can activate either one uniformly.
type Purchasable interface {
	Activate(now time.Time)
	Label() string
}
