package rules

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/autoaudit/estimator/vehicle"
)

// costLimit bounds the work a single band condition may do
const costLimit = 10000

// Engine compiles the rule catalog to CEL programs and evaluates it against vehicle facts.
// A loaded catalog is immutable; Load swaps in a new one without blocking evaluations.
type Engine struct {
	env   *cel.Env
	rules []compiledRule
	mu    sync.RWMutex
}

type compiledRule struct {
	rule  *Rule
	progs []cel.Program // one per band, same order
}

// NewEngine creates an engine with the given catalog compiled
func NewEngine(c *Catalog) (*Engine, error) {
	env, err := newEnv()
	if err != nil {
		return nil, err
	}

	en := &Engine{env: env}
	if err := en.Load(c); err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}
	return en, nil
}

// NewDefaultEngine creates an engine for the built-in catalog
func NewDefaultEngine() (*Engine, error) {
	c, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return NewEngine(c)
}

func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("age", cel.IntType),
		cel.Variable("miles", cel.IntType),
		cel.Variable("fuel", cel.StringType),
		cel.Variable("transmission", cel.StringType),
		cel.Variable("timing", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// compile turns a band condition into a program. An empty condition always matches.
func compile(env *cel.Env, expression string) (cel.Program, error) {
	if strings.TrimSpace(expression) == "" {
		expression = "true"
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %s", expression, ast.OutputType())
	}

	prog, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return prog, nil
}

// Load validates and compiles c, then replaces the active catalog.
// On error the previous catalog stays active.
func (en *Engine) Load(c *Catalog) error {
	if err := ValidateCatalog(c); err != nil {
		return err
	}

	compiled := make([]compiledRule, 0, len(c.Rules))
	for _, r := range c.Rules {
		cr := compiledRule{rule: r, progs: make([]cel.Program, 0, len(r.Bands))}
		for i, b := range r.Bands {
			prog, err := compile(en.env, b.When)
			if err != nil {
				return fmt.Errorf("failed to compile rule %s band %d: %w", r.ID, i, err)
			}
			cr.progs = append(cr.progs, prog)
		}
		compiled = append(compiled, cr)
	}

	en.mu.Lock()
	en.rules = compiled
	en.mu.Unlock()

	return nil
}

// RuleIDs lists the loaded rules in evaluation order
func (en *Engine) RuleIDs() []string {
	compiled := en.snapshot()
	ids := make([]string, 0, len(compiled))
	for _, cr := range compiled {
		ids = append(ids, cr.rule.ID)
	}
	return ids
}

func (en *Engine) snapshot() []compiledRule {
	en.mu.RLock()
	defer en.mu.RUnlock()
	return en.rules
}

// Evaluate runs every rule once, in catalog order, and returns the items that fired.
// The fallback rule fires only when nothing else did, so the result is never empty
// for a catalog that has one. Evaluation errors do not stop the remaining rules.
func (en *Engine) Evaluate(d vehicle.Derived) ([]CandidateItem, error) {
	results, items := en.run(d)

	var errs []error
	for _, res := range results {
		if res.Error != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", res.RuleID, res.Error))
		}
	}
	return items, errors.Join(errs...)
}

// Explain reports how every rule evaluated, including the ones that did not fire
func (en *Engine) Explain(d vehicle.Derived) []*EvaluationResult {
	results, _ := en.run(d)
	return results
}

func (en *Engine) run(d vehicle.Derived) ([]*EvaluationResult, []CandidateItem) {
	compiled := en.snapshot()
	act := activation(d)

	results := make([]*EvaluationResult, 0, len(compiled))
	var items []CandidateItem
	var fallback *compiledRule
	var fallbackResult *EvaluationResult

	for i := range compiled {
		cr := &compiled[i]
		res := &EvaluationResult{RuleID: cr.rule.ID, Band: -1}
		results = append(results, res)

		if cr.rule.Fallback {
			fallback, fallbackResult = cr, res
			continue
		}
		if item, ok := cr.fire(act, res); ok {
			items = append(items, item)
		}
	}

	if len(items) == 0 && fallback != nil {
		if item, ok := fallback.fire(act, fallbackResult); ok {
			items = append(items, item)
		}
	}

	return results, items
}

// fire evaluates the bands in order and builds the item for the first match
func (cr *compiledRule) fire(act map[string]any, res *EvaluationResult) (CandidateItem, bool) {
	for i, prog := range cr.progs {
		out, _, err := prog.Eval(act)
		if err != nil {
			res.Error = err
			return CandidateItem{}, false
		}

		matched, ok := out.Value().(bool)
		if !ok || !matched {
			continue
		}

		b := cr.rule.Bands[i]
		res.Matched = true
		res.Band = i
		res.Status = b.Status
		return CandidateItem{
			ID:           cr.rule.ID,
			Label:        b.Label,
			Category:     cr.rule.Category,
			Status:       b.Status,
			BaseLow:      b.BaseLow,
			BaseHigh:     b.BaseHigh,
			Multiplier:   b.Multiplier,
			WhyFlagged:   b.WhyFlagged,
			WhyItMatters: b.WhyItMatters,
			Questions:    slices.Clone(b.Questions),
			RedFlags:     slices.Clone(b.RedFlags),
			Weight:       cr.rule.Weight,
		}, true
	}
	return CandidateItem{}, false
}

func activation(d vehicle.Derived) map[string]any {
	return map[string]any{
		"age":          int64(d.Age),
		"miles":        int64(d.Miles),
		"fuel":         string(d.Fuel),
		"transmission": string(d.Transmission),
		"timing":       string(d.TimingType),
	}
}
