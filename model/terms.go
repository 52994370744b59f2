package model

import "strconv"

// StructuredTerms maps a known lease field to its extracted value. A nil value
// means the lease does not clearly state it.
type StructuredTerms map[string]*string

// Lease field keys, in the order they are requested from the model.
const (
	TermMonthlyRent       = "monthly_rent"
	TermRentDueDate       = "rent_due_date"
	TermLeaseStart        = "lease_start"
	TermLeaseEnd          = "lease_end"
	TermSecurityDeposit   = "security_deposit"
	TermLateFee           = "late_fee"
	TermUtilitiesTenant   = "utilities_tenant"
	TermUtilitiesLandlord = "utilities_landlord"
	TermPetsAllowed       = "pets_allowed"
	TermNoticePeriod      = "notice_period"
	TermPropertyAddress   = "property_address"
)

// TermKeys lists every field the extraction prompt asks for.
var TermKeys = []string{
	TermMonthlyRent,
	TermRentDueDate,
	TermLeaseStart,
	TermLeaseEnd,
	TermSecurityDeposit,
	TermLateFee,
	TermUtilitiesTenant,
	TermUtilitiesLandlord,
	TermPetsAllowed,
	TermNoticePeriod,
	TermPropertyAddress,
}

var termKeySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(TermKeys))
	for _, k := range TermKeys {
		set[k] = struct{}{}
	}
	return set
}()

// IsTermKey reports whether key is one of the known lease fields
func IsTermKey(key string) bool {
	_, ok := termKeySet[key]
	return ok
}

// NormalizeTerms keeps only known keys from a decoded JSON object. Strings pass
// through, numbers and booleans are rendered as strings, and null, objects and
// arrays become nil.
func NormalizeTerms(obj map[string]any) StructuredTerms {
	terms := make(StructuredTerms, len(obj))
	for key, raw := range obj {
		if !IsTermKey(key) {
			continue
		}
		terms[key] = termValue(raw)
	}
	return terms
}

func termValue(raw any) *string {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	default:
		return nil
	}
	return &s
}

// Get returns the value for key and whether it was stated
func (t StructuredTerms) Get(key string) (string, bool) {
	v, ok := t[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}
