package rules

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxRules = 100
	maxBands = 10
)

var validIdentifier = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateCatalog checks a catalog before it is compiled.
// Returns the first problem found, nil if the catalog is usable.
func ValidateCatalog(c *Catalog) error {
	if c == nil || len(c.Rules) == 0 {
		return fmt.Errorf("catalog cannot be empty, must contain at least one rule")
	}
	if len(c.Rules) > maxRules {
		return fmt.Errorf("catalog contains %d rules, maximum allowed is %d", len(c.Rules), maxRules)
	}

	env, err := newEnv()
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Rules))
	fallbacks := 0
	for _, r := range c.Rules {
		if r == nil {
			return fmt.Errorf("catalog contains an empty rule entry")
		}
		if err := validateIdentifier(r.ID); err != nil {
			return fmt.Errorf("invalid rule id %q: %w", r.ID, err)
		}
		if seen[r.ID] {
			return fmt.Errorf("rule with ID %s already exists", r.ID)
		}
		seen[r.ID] = true

		if strings.TrimSpace(r.Category) == "" {
			return fmt.Errorf("rule %q has empty category", r.ID)
		}
		if r.Weight <= 0 {
			return fmt.Errorf("rule %q has weight %d, must be positive", r.ID, r.Weight)
		}
		if r.Fallback {
			fallbacks++
		}

		if len(r.Bands) == 0 {
			return fmt.Errorf("rule %q must contain at least one band", r.ID)
		}
		if len(r.Bands) > maxBands {
			return fmt.Errorf("rule %q contains %d bands, maximum allowed is %d", r.ID, len(r.Bands), maxBands)
		}
		for i, b := range r.Bands {
			if err := validateBand(b); err != nil {
				return fmt.Errorf("rule %q band %d: %w", r.ID, i, err)
			}
			if !r.Fallback && strings.TrimSpace(b.When) == "" {
				return fmt.Errorf("rule %q band %d: condition is required for non-fallback rules", r.ID, i)
			}
			if _, err := compile(env, b.When); err != nil {
				return fmt.Errorf("rule %q band %d: %w", r.ID, i, err)
			}
		}
	}

	if fallbacks > 1 {
		return fmt.Errorf("catalog contains %d fallback rules, at most one is allowed", fallbacks)
	}

	return nil
}

func validateBand(b Band) error {
	if strings.TrimSpace(b.Label) == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if strings.TrimSpace(b.Status) == "" {
		return fmt.Errorf("status cannot be empty")
	}
	if b.BaseLow < 0 || b.BaseHigh < 0 {
		return fmt.Errorf("base costs cannot be negative (got %v-%v)", b.BaseLow, b.BaseHigh)
	}
	if b.BaseLow > b.BaseHigh {
		return fmt.Errorf("base_low %v exceeds base_high %v", b.BaseLow, b.BaseHigh)
	}
	if b.Multiplier <= 0 || b.Multiplier > 1 {
		return fmt.Errorf("multiplier %v must be in (0, 1]", b.Multiplier)
	}
	if strings.TrimSpace(b.WhyFlagged) == "" || strings.TrimSpace(b.WhyItMatters) == "" {
		return fmt.Errorf("explanation text cannot be empty")
	}
	if len(b.Questions) == 0 {
		return fmt.Errorf("at least one seller question is required")
	}
	return nil
}

// validateIdentifier validates a rule id.
// Ids become item_id values in stored payloads, so they are kept to snake_case.
func validateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("identifier length %d exceeds maximum of 64 characters", len(name))
	}
	if !validIdentifier.MatchString(name) {
		return fmt.Errorf("must match pattern ^[a-z][a-z0-9_]*$ (lower-case letter followed by letters, digits, or underscores)")
	}
	return nil
}
