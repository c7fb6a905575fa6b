// Package rules assigns categories, platforms, and payment methods to
// statement rows by pattern matching against the transaction narration.
// Classification is a pure function over the whole batch: recurring-merchant
// detection needs cross-row state, and identical input always produces
// identical output.
package rules

import (
	"strings"
	"unicode"

	"github.com/paisatrack/paisatrack/internal/model"
)

// ClassifyRows classifies every row in the batch. Rows reaching this point
// always have a resolved amount and date (the file parser drops the rest).
func ClassifyRows(rows []model.RawRow) []model.ClassifiedRow {
	out := make([]model.ClassifiedRow, len(rows))

	// merchant key -> indexes of rows sharing it
	groups := make(map[string][]int, len(rows))

	for i, raw := range rows {
		classified := model.ClassifiedRow{
			RawRow:       raw,
			Tags:         []string{},
			ClassifiedBy: model.ClassifiedByRule,
		}

		if raw.Amount != nil {
			classified.Confidence.Amount = 1.0
		}
		if raw.Date != nil {
			classified.Confidence.Date = 1.0
		}
		if raw.Direction != "" {
			classified.Confidence.Direction = 1.0
		}

		narration := strings.ToLower(raw.Narration)

		if category, conf := matchCategory(narration); category != "" {
			classified.Category = category
			classified.Confidence.Category = conf
		}

		if platform, conf := matchPlatform(narration); platform != "" {
			classified.Platform = platform
			classified.Confidence.Platform = conf
		}

		if method := matchPaymentMethod(raw.Narration); method != "" {
			classified.PaymentMethod = method
			classified.Confidence.PaymentMethod = 1.0
		}

		key := merchantKey(classified)
		if key != "" {
			groups[key] = append(groups[key], i)
		}

		out[i] = classified
	}

	// Any merchant seen twice or more in the batch flags every member of
	// its group; singletons stay false.
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		for _, i := range idxs {
			out[i].Recurring = true
		}
	}

	return out
}

func matchCategory(narration string) (string, float64) {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(narration, kw) {
				return rule.category, rule.confidence
			}
		}
	}
	return "", 0
}

func matchPlatform(narration string) (string, float64) {
	for _, rule := range platformRules {
		for _, kw := range rule.keywords {
			if strings.Contains(narration, kw) {
				return rule.platform, rule.confidence
			}
		}
	}
	return "", 0
}

// matchPaymentMethod checks upper-cased marker substrings against the raw
// narration. Bank narration markers like UPI and NEFT are conventionally
// upper-case, so matching is case-sensitive on an upper-cased copy.
func matchPaymentMethod(narration string) string {
	upper := strings.ToUpper(narration)
	for _, rule := range paymentRules {
		for _, marker := range rule.markers {
			if strings.Contains(upper, marker) {
				return rule.method
			}
		}
	}
	return ""
}

// merchantKey normalizes a row to a grouping key for recurring detection.
// The matched platform is the strongest identity; otherwise the narration is
// reduced to its alphabetic tokens.
func merchantKey(row model.ClassifiedRow) string {
	if row.Platform != "" {
		return strings.ToLower(row.Platform)
	}
	return normalizeNarration(row.Narration)
}

// normalizeNarration strips digits and punctuation and collapses whitespace,
// so "UPI-ZOMATO-404/912" and "UPI-ZOMATO-513/221" group together.
func normalizeNarration(narration string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(narration) {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
