package extractor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"autoinvoice/internal/domain"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseFields pulls an invoice-field JSON object out of a model reply.
// Models wrap their answer in a fenced code block more often than not, so a
// fenced block wins; otherwise the first top-level {...} span is tried.
func ParseFields(reply string) (domain.InvoiceFields, error) {
	var fields domain.InvoiceFields

	raw := ""
	if m := fencedJSONRe.FindStringSubmatch(reply); m != nil {
		raw = m[1]
	} else {
		start := strings.Index(reply, "{")
		end := strings.LastIndex(reply, "}")
		if start >= 0 && end > start {
			raw = reply[start : end+1]
		}
	}
	if raw == "" {
		return fields, fmt.Errorf("no JSON object found in model reply")
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return fields, fmt.Errorf("decoding model reply: %w", err)
	}
	return fields, nil
}
