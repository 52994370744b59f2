package rag

import (
	"encoding/json"
	"strings"

	"github.com/AnTengye/leasewise/model"
)

const fence = "```"

// Messages reported to API clients when model output cannot be used.
const (
	ErrMsgTermsUnparseable = "Could not parse model output as JSON."
	ErrMsgFlagsFormat      = "Model returned unexpected format for flags."
)

// ExtractJSONObject finds the first JSON object in free-form model output.
// Fenced segments are tried first (a leading "json" tag, any case, is
// dropped), then the whole trimmed text. accept, when non-nil, can reject an
// object that decoded but has the wrong shape. It never panics.
func ExtractJSONObject(raw string, accept func(map[string]any) bool) (map[string]any, bool) {
	text := strings.TrimSpace(raw)

	if strings.Contains(text, fence) {
		for _, part := range strings.Split(text, fence) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if len(part) >= 4 && strings.EqualFold(part[:4], "json") {
				part = strings.TrimSpace(part[4:])
			}
			if obj, ok := decodeObject(part); ok && (accept == nil || accept(obj)) {
				return obj, true
			}
		}
	}

	if obj, ok := decodeObject(text); ok && (accept == nil || accept(obj)) {
		return obj, true
	}
	return nil, false
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// TermsResult is the outcome of parsing a structured-extraction reply.
// Terms is never nil; Error is empty when Parsed is true.
type TermsResult struct {
	Terms  model.StructuredTerms
	Parsed bool
	Error  string
}

// ParseTerms extracts lease fields from model output. An unparseable reply,
// or one with no known fields, yields empty terms and ErrMsgTermsUnparseable.
func ParseTerms(raw string) TermsResult {
	obj, ok := ExtractJSONObject(raw, nil)
	if !ok {
		return TermsResult{Terms: model.StructuredTerms{}, Error: ErrMsgTermsUnparseable}
	}
	terms := model.NormalizeTerms(obj)
	if len(terms) == 0 {
		return TermsResult{Terms: terms, Error: ErrMsgTermsUnparseable}
	}
	return TermsResult{Terms: terms, Parsed: true}
}

// RedFlagsResult is the outcome of parsing a red-flag reply. Flags is never
// nil. Parsed is true when a {"flags": [...]} object was found; Error is set
// only when "flags" was present but not an array.
type RedFlagsResult struct {
	Flags    []model.RedFlag
	Rejected int
	Parsed   bool
	Error    string
}

func hasFlags(obj map[string]any) bool {
	_, ok := obj["flags"]
	return ok
}

// ParseRedFlags extracts {"flags": [...]} from model output. Output with no
// such object is treated as "no flags found".
func ParseRedFlags(raw string) RedFlagsResult {
	obj, ok := ExtractJSONObject(raw, hasFlags)
	if !ok {
		return RedFlagsResult{Flags: []model.RedFlag{}}
	}
	items, ok := obj["flags"].([]any)
	if !ok {
		return RedFlagsResult{Flags: []model.RedFlag{}, Error: ErrMsgFlagsFormat}
	}
	flags, rejected := model.ValidateRedFlags(items)
	return RedFlagsResult{Flags: flags, Rejected: rejected, Parsed: true}
}
