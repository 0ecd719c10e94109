package estimate

import (
	"fmt"
	"strings"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
)

// BuildPrompt assembles the single free-text prompt sent to the completion
// service: the question, the selected shipment and, when the table matched,
// its rate range. Empty selection fields are left out.
func BuildPrompt(req Request, rate *shipping.RateRange) string {
	var b strings.Builder

	b.WriteString("Question: ")
	b.WriteString(strings.TrimSpace(req.Question))

	sel := []struct{ label, value string }{
		{"Package size", req.Key.SizeTier},
		{"Weight class", req.Key.WeightClass},
		{"Service tier", req.Key.ServiceTier},
		{"Destination country", req.Key.ToCountry},
	}
	wroteHeader := false
	for _, s := range sel {
		if strings.TrimSpace(s.value) == "" {
			continue
		}
		if !wroteHeader {
			b.WriteString("\n\nSelected shipment:")
			wroteHeader = true
		}
		fmt.Fprintf(&b, "\n- %s: %s", s.label, s.value)
	}

	if rate != nil {
		b.WriteString("\n\nRate table range:")
		fmt.Fprintf(&b, "\n- Low: $%.2f", rate.Low)
		fmt.Fprintf(&b, "\n- Average: $%.2f", rate.Average)
		fmt.Fprintf(&b, "\n- High: $%.2f", rate.High)
	} else if wroteHeader {
		b.WriteString("\n\nThe rate table has no entry for this combination.")
	}

	return b.String()
}
