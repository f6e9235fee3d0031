package models

import (
	"net/url"
	"strings"
)

// UPICurrency is the only currency UPI collect links are generated for
const UPICurrency = "INR"

// UPIPaymentURI returns the upi://pay link for the current balance due, or
// false when UPI is disabled, no UPI id is set or nothing is left to pay.
func (inv *Invoice) UPIPaymentURI() (string, bool) {
	id := strings.TrimSpace(inv.UPIID)
	if !inv.UPIEnabled || id == "" {
		return "", false
	}

	balance := inv.Totals().BalanceDue
	if !balance.IsPositive() {
		return "", false
	}

	payee := inv.Sender.Name
	if payee == "" {
		payee = inv.Sender.Company
	}

	// UPI apps expect pa, pn, am, cu in this order; url.Values would sort them
	params := []string{
		"pa=" + url.QueryEscape(id),
		"pn=" + url.QueryEscape(payee),
		"am=" + balance.StringFixed(2),
		"cu=" + UPICurrency,
	}
	return "upi://pay?" + strings.Join(params, "&"), true
}
