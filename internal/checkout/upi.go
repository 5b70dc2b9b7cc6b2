package checkout

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// BuildUPILink renders the upi://pay deep link the storefront encodes as a
// QR code. The amount always carries two decimal places; everything else is
// URL-escaped as query parameters.
func BuildUPILink(payeeVPA, payeeName string, amount decimal.Decimal, note string) string {
	params := url.Values{}
	params.Set("pa", payeeVPA)
	params.Set("pn", payeeName)
	params.Set("am", amount.StringFixed(2))
	params.Set("tn", note)
	params.Set("cu", "INR")
	return "upi://pay?" + params.Encode()
}
