// Package variant normalizes free-text inventory labels such as
// "17 - Cambria Brittanicca (ABB) 3cm" into brand, color, thickness and
// location.
//
// Parsing is a lossy, order-dependent heuristic. Each step consumes part of
// a working string and the steps run in a fixed order, so overlapping
// patterns resolve in favor of the earlier step. Parse never fails: labels
// it cannot make sense of come back with Brand "Unknown" and the original
// text as Color.
package variant

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// Unknown marks a field the parser could not extract.
const Unknown = "Unknown"

// Variant is the structured form of an inventory label.
type Variant struct {
	Brand     string `json:"brand"`
	Color     string `json:"color"`
	Thickness string `json:"thickness"`
	Location  string `json:"location"`
}

// FullName renders "Brand Color (Thickness)".
func (v Variant) FullName() string {
	return v.Brand + " " + v.Color + " (" + v.Thickness + ")"
}

// DefaultLocations are the warehouse codes accepted in parentheses.
var DefaultLocations = []string{"ABB", "ATL", "CHS", "CLT", "DAL", "HOU", "NSH", "RAL", "SAV"}

// DefaultBrands are multi-word or ambiguous brand prefixes matched before
// falling back to the first token.
var DefaultBrands = []string{
	"Cambria",
	"Caesarstone",
	"Corian Quartz",
	"Dekton",
	"HanStone",
	"LG Viatera",
	"MSI Q Quartz",
	"MSI",
	"Q Quartz",
	"Silestone",
	"Vicostone",
	"Wilsonart",
}

// Parser holds the whitelists used by Parse. The zero value accepts no
// location codes and detects brands by first token only.
type Parser struct {
	Locations []string
	Brands    []string

	ordered bool
}

// NewParser returns a Parser with brands ordered longest first once, so Parse
// does not reorder them per label.
func NewParser(locations, brands []string) Parser {
	return Parser{Locations: locations, Brands: longestFirst(brands), ordered: true}
}

var defaultParser = NewParser(DefaultLocations, DefaultBrands)

// Parse runs the default parser.
func Parse(label string) Variant {
	return defaultParser.Parse(label)
}

var (
	lotPrefixRe   = regexp.MustCompile(`^\s*\d+\s*-\s*`)
	thicknessRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\b`)
	parentheticRe = regexp.MustCompile(`\(([^()]*)\)`)
	codeRe        = regexp.MustCompile(`#\S+`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Parse extracts a Variant from label.
func (p Parser) Parse(label string) Variant {
	fallback := Variant{Brand: Unknown, Color: label, Thickness: "", Location: Unknown}

	rest := stripLotPrefix(label)
	rest, thickness := extractThickness(rest)
	rest, location := extractLocation(rest, p.Locations)
	rest = stripParentheticals(rest)
	rest = stripCodes(rest)

	brands := p.Brands
	if !p.ordered {
		brands = longestFirst(brands)
	}
	brand, color, ok := splitBrand(rest, brands)
	if !ok {
		return fallback
	}

	return Variant{
		Brand:     brand,
		Color:     color,
		Thickness: thickness,
		Location:  location,
	}
}

func stripLotPrefix(s string) string {
	return lotPrefixRe.ReplaceAllString(s, "")
}

func extractThickness(s string) (string, string) {
	loc := thicknessRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, Unknown
	}
	thickness := s[loc[2]:loc[3]] + "cm"
	return s[:loc[0]] + " " + s[loc[1]:], thickness
}

func extractLocation(s string, whitelist []string) (string, string) {
	for _, m := range parentheticRe.FindAllStringSubmatchIndex(s, -1) {
		code := strings.ToUpper(strings.TrimSpace(s[m[2]:m[3]]))
		for _, allowed := range whitelist {
			if code == allowed {
				return s[:m[0]] + " " + s[m[1]:], allowed
			}
		}
	}
	return s, Unknown
}

func stripParentheticals(s string) string {
	for parentheticRe.MatchString(s) {
		s = parentheticRe.ReplaceAllString(s, " ")
	}
	return strings.NewReplacer("(", " ", ")", " ").Replace(s)
}

func stripCodes(s string) string {
	return codeRe.ReplaceAllString(s, " ")
}

// splitBrand expects brands ordered longest first and reports false when
// nothing usable is left.
func splitBrand(s string, brands []string) (string, string, bool) {
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	s = strings.Trim(s, " -,")
	if s == "" {
		return "", "", false
	}

	for _, brand := range brands {
		n := len(brand)
		if n == 0 || len(s) < n || !strings.EqualFold(s[:n], brand) {
			continue
		}
		if len(s) == n {
			return brand, "", true
		}
		if s[n] == ' ' {
			return brand, strings.TrimSpace(s[n:]), true
		}
	}

	brand, color, _ := strings.Cut(s, " ")
	return brand, strings.TrimSpace(color), true
}

func longestFirst(brands []string) []string {
	out := slices.Clone(brands)
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	return out
}
