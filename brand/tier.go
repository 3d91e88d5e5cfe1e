// Package brand maps a vehicle make to a pricing tier.
//
// Every cost estimate is scaled by the tier multiplier, so parts and labour
// for a premium badge cost more than the same job on a mass-market car.
package brand

import "strings"

// Tier is a coarse pricing category for a manufacturer
type Tier string

const (
	TierBudget      Tier = "budget"
	TierMass        Tier = "mass"
	TierUpperMass   Tier = "upper_mass"
	TierPremium     Tier = "premium"
	TierLuxury      Tier = "luxury"
	TierPerformance Tier = "performance"
)

// DefaultTier is used for absent or unrecognised makes
const DefaultTier = TierMass

var multipliers = map[Tier]float64{
	TierBudget:      0.9,
	TierMass:        1.0,
	TierUpperMass:   1.2,
	TierPremium:     1.4,
	TierLuxury:      1.8,
	TierPerformance: 3.0,
}

// tierMembers is checked in order; the first tier listing the make wins.
var tierMembers = []struct {
	tier  Tier
	makes []string
}{
	{TierBudget, []string{"dacia", "ssangyong", "kgm", "mg", "proton", "perodua", "lada", "great wall", "chery"}},
	{TierMass, []string{
		"ford", "vauxhall", "opel", "toyota", "volkswagen", "skoda", "seat", "peugeot", "renault",
		"mini", "nissan", "citroen", "fiat", "suzuki", "chevrolet", "mitsubishi", "smart", "byd",
	}},
	{TierUpperMass, []string{"mazda", "honda", "hyundai", "kia", "volvo", "subaru", "cupra", "ds", "jeep", "alfa romeo", "polestar"}},
	{TierPremium, []string{"bmw", "audi", "mercedes-benz", "jaguar", "lexus", "tesla", "genesis", "infiniti", "alpina"}},
	{TierLuxury, []string{"porsche", "maserati", "bentley", "rolls-royce", "land rover"}},
	{TierPerformance, []string{"ferrari", "lamborghini", "mclaren", "aston martin", "lotus", "bugatti", "pagani", "koenigsegg"}},
}

// aliases rewrite common abbreviations and spellings to a catalog name
var aliases = map[string]string{
	"vw":            "volkswagen",
	"volkswagon":    "volkswagen",
	"merc":          "mercedes-benz",
	"mercedes":      "mercedes-benz",
	"mercedes benz": "mercedes-benz",
	"mb":            "mercedes-benz",
	"rolls royce":   "rolls-royce",
	"rr":            "rolls-royce",
	"range rover":   "land rover",
	"landrover":     "land rover",
	"land-rover":    "land rover",
	"chevy":         "chevrolet",
	"citroën":       "citroen",
	"alfa":          "alfa romeo",
	"alfa-romeo":    "alfa romeo",
	"aston":         "aston martin",
	"aston-martin":  "aston martin",
	"lambo":         "lamborghini",
	"ssang yong":    "ssangyong",
	"ssang-yong":    "ssangyong",
	"bmw alpina":    "alpina",
	"mercedes-amg":  "mercedes-benz",
	"mercedes amg":  "mercedes-benz",
	"skoda auto":    "skoda",
	"škoda":         "skoda",
	"great-wall":    "great wall",
	"mg motor":      "mg",
	"mg motor uk":   "mg",
	"mini cooper":   "mini",
	"ford motor":    "ford",
	"volkswagen ag": "volkswagen",
}

var index = buildIndex()

func buildIndex() map[string]Tier {
	idx := make(map[string]Tier)
	// Iterate from the lowest priority so that earlier tiers overwrite later ones
	for i := len(tierMembers) - 1; i >= 0; i-- {
		for _, m := range tierMembers[i].makes {
			idx[m] = tierMembers[i].tier
		}
	}
	return idx
}

// Resolve returns the tier and multiplier for a free-text make.
// Unknown makes resolve to the mass tier; this never fails.
func Resolve(name string) (Tier, float64) {
	tier, ok := index[Normalize(name)]
	if !ok {
		tier = DefaultTier
	}
	return tier, multipliers[tier]
}

// Normalize lower-cases the make, treats underscores as spaces, collapses
// whitespace and tightens spaced hyphens ("mercedes - benz"), then maps it to a
// known make via aliases. Hyphen and space spellings of a make are interchangeable.
func Normalize(name string) string {
	m := strings.ToLower(strings.ReplaceAll(name, "_", " "))
	m = strings.Join(strings.Fields(m), " ")
	m = strings.ReplaceAll(strings.ReplaceAll(m, " -", "-"), "- ", "-")

	candidates := []string{m, strings.ReplaceAll(m, "-", " "), strings.ReplaceAll(m, " ", "-")}
	for _, c := range candidates {
		if canonical, ok := aliases[c]; ok {
			return canonical
		}
		if _, ok := index[c]; ok {
			return c
		}
	}
	return m
}

// Multiplier returns the cost multiplier for the tier, 1.0 for unknown tiers
func (t Tier) Multiplier() float64 {
	if m, ok := multipliers[t]; ok {
		return m
	}
	return 1.0
}

func (t Tier) String() string {
	return string(t)
}

// Tiers lists every tier in priority order
func Tiers() []Tier {
	out := make([]Tier, 0, len(tierMembers))
	for _, tm := range tierMembers {
		out = append(out, tm.tier)
	}
	return out
}
