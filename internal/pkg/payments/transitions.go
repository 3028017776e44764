package payments

import "github.com/autoplazacr/autoplaza/app/models"

// transitions is the allowed status graph for a payment record. succeeded and
// failed are terminal: once reached, no event may move the record elsewhere.
var transitions = map[string][]string{
	models.PaymentStatusCreated:    {models.PaymentStatusProcessing, models.PaymentStatusSucceeded, models.PaymentStatusFailed},
	models.PaymentStatusProcessing: {models.PaymentStatusSucceeded, models.PaymentStatusFailed},
	models.PaymentStatusSucceeded:  {},
	models.PaymentStatusFailed:     {},
}

// CanTransition reports whether a payment record may move from one status to
// another. Re-applying the current status is allowed so duplicate webhook
// deliveries stay idempotent.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status admits no further transitions.
func IsTerminalStatus(status string) bool {
	return len(transitions[status]) == 0 && (status == models.PaymentStatusSucceeded || status == models.PaymentStatusFailed)
}
