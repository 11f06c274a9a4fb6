package user

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Country is an option of the country select.
type Country struct {
	Code  string `json:"value"`
	Label string `json:"label"`
}

// countryCodes is the select's data source. Validation does not require
// membership; any non-empty code is accepted.
var countryCodes = []string{
	"US", "AM", "GB", "CA", "AU", "DE", "FR", "IT", "ES", "NL",
	"JP", "KR", "CN", "IN", "BR", "MX", "RU", "ZA", "EG", "SA",
}

// Countries returns the selectable countries with English display names.
func Countries() []Country {
	out := make([]Country, 0, len(countryCodes))
	for _, code := range countryCodes {
		out = append(out, Country{Code: code, Label: CountryName(code)})
	}
	return out
}

// CountryName returns the English name of a region code, or the code itself
// when it is not a known region.
func CountryName(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	name := display.English.Regions().Name(region)
	if name == "" {
		return code
	}
	return name
}
