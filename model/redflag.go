package model

import (
	"strings"
	"unicode"
)

// Severity grades how much a clause might hurt the tenant.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity normalises case and surrounding whitespace. ok is false when s
// is not one of low, medium or high.
func ParseSeverity(s string) (Severity, bool) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return sev, true
	default:
		return SeverityMedium, false
	}
}

// RedFlag is a potentially tenant-unfriendly clause found in a lease.
type RedFlag struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	ClauseText  string   `json:"clause_text"`
	Explanation string   `json:"explanation"`
}

// ValidateRedFlags turns the decoded "flags" array into typed flags. Entries
// that are not objects, or carry neither a title nor a clause, are dropped and
// counted in rejected. Unknown severities are graded medium.
func ValidateRedFlags(items []any) (flags []RedFlag, rejected int) {
	flags = make([]RedFlag, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			rejected++
			continue
		}

		flag := RedFlag{
			ID:          stringField(obj, "id"),
			Title:       stringField(obj, "title"),
			ClauseText:  stringField(obj, "clause_text"),
			Explanation: stringField(obj, "explanation"),
		}
		if flag.Title == "" && flag.ClauseText == "" {
			rejected++
			continue
		}
		flag.Severity, _ = ParseSeverity(stringField(obj, "severity"))
		if flag.ID == "" {
			flag.ID = Slug(flag.Title)
		}
		flags = append(flags, flag)
	}
	return flags, rejected
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// Slug lower-cases s and joins its alphanumeric runs with underscores,
// e.g. "High Late Fee!" -> "high_late_fee".
func Slug(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}
