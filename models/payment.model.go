package models

import "strings"

// DefaultPaymentMethod is recorded when checkout does not name one
const DefaultPaymentMethod = "COD"

// NormalizePaymentMethod trims the client supplied method and falls back to
// cash on delivery. The method is recorded on the order, never charged.
func NormalizePaymentMethod(method string) string {
	method = strings.TrimSpace(method)
	if method == "" {
		return DefaultPaymentMethod
	}
	return method
}
