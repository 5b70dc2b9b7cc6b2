package assistant

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ExtractionDTO is the structured product draft pulled from a photo.
type ExtractionDTO struct {
	Title         string   `json:"title"`
	Brand         string   `json:"brand,omitempty"`
	Color         string   `json:"color,omitempty"`
	Category      string   `json:"category,omitempty"`
	Collection    string   `json:"collection,omitempty"`
	PriceEstimate string   `json:"price_estimate,omitempty"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	FollowUps     []string `json:"follow_ups,omitempty"`
	// Degraded marks a regex-fallback result so the UI can prompt for review.
	Degraded bool `json:"degraded,omitempty"`
	// Note carries a human-readable explanation when extraction gave up.
	Note string `json:"note,omitempty"`
}

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	titleLineRe  = regexp.MustCompile(`(?im)^\s*(?:title|product|name)\s*[:\-]\s*(.+)$`)
	priceRe      = regexp.MustCompile(`(?:₹|Rs\.?\s?|INR\s?)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
)

// parseExtraction pulls the first JSON object out of the model reply. Model
// output routinely wraps JSON in prose or code fences.
func parseExtraction(reply string) (*ExtractionDTO, bool) {
	candidate := jsonObjectRe.FindString(reply)
	if candidate == "" {
		return nil, false
	}
	var out ExtractionDTO
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, false
	}
	if strings.TrimSpace(out.Title) == "" {
		return nil, false
	}
	return &out, true
}

// fallbackExtraction scrapes a title line and a rupee amount out of free
// text when the model ignored the JSON instruction.
func fallbackExtraction(reply string) *ExtractionDTO {
	out := &ExtractionDTO{Degraded: true}
	if m := titleLineRe.FindStringSubmatch(reply); len(m) == 2 {
		out.Title = strings.TrimSpace(m[1])
	}
	if m := priceRe.FindStringSubmatch(reply); len(m) == 2 {
		out.PriceEstimate = strings.ReplaceAll(m[1], ",", "")
	}
	return out
}
