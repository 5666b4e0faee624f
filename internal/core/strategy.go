package core

import (
	"math"
	"strings"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// weightTolerance absorbs floating-point error when checking that a weight
// vector sums to one.
const weightTolerance = 1e-9

var (
	developerWeights      = models.Weights{Urgency: 0.30, Importance: 0.30, Effort: 0.20, Dependency: 0.20}
	programManagerWeights = models.Weights{Urgency: 0.40, Importance: 0.35, Effort: 0.10, Dependency: 0.15}

	fixedStrategyWeights = map[models.StrategyName]models.Weights{
		models.StrategyFastestWins:    {Urgency: 0.15, Importance: 0.15, Effort: 0.60, Dependency: 0.10},
		models.StrategyHighImpact:     {Urgency: 0.10, Importance: 0.70, Effort: 0.10, Dependency: 0.10},
		models.StrategyDeadlineDriven: {Urgency: 0.70, Importance: 0.15, Effort: 0.05, Dependency: 0.10},
	}
)

// StrategyInfo describes a built-in strategy row for listings.
type StrategyInfo struct {
	Name    models.StrategyName
	Role    models.Role
	Weights models.Weights
}

// BuiltinStrategies returns the fixed weight table in display order.
func BuiltinStrategies() []StrategyInfo {
	return []StrategyInfo{
		{Name: models.StrategySmartBalance, Role: models.RoleDeveloper, Weights: developerWeights},
		{Name: models.StrategySmartBalance, Role: models.RoleProgramManager, Weights: programManagerWeights},
		{Name: models.StrategyFastestWins, Weights: fixedStrategyWeights[models.StrategyFastestWins]},
		{Name: models.StrategyHighImpact, Weights: fixedStrategyWeights[models.StrategyHighImpact]},
		{Name: models.StrategyDeadlineDriven, Weights: fixedStrategyWeights[models.StrategyDeadlineDriven]},
	}
}

// NormalizeStrategy canonicalises a strategy selector. An empty selector means
// smart_balance. The qualified smart-balance aliases also return the role they
// pin.
func NormalizeStrategy(name models.StrategyName) (models.StrategyName, models.Role, error) {
	switch models.StrategyName(strings.ToLower(strings.TrimSpace(string(name)))) {
	case "", models.StrategySmartBalance:
		return models.StrategySmartBalance, "", nil
	case models.StrategySmartBalanceDeveloper:
		return models.StrategySmartBalance, models.RoleDeveloper, nil
	case models.StrategySmartBalancePM:
		return models.StrategySmartBalance, models.RoleProgramManager, nil
	case models.StrategyFastestWins:
		return models.StrategyFastestWins, "", nil
	case models.StrategyHighImpact:
		return models.StrategyHighImpact, "", nil
	case models.StrategyDeadlineDriven:
		return models.StrategyDeadlineDriven, "", nil
	}
	return "", "", validationErrorf("strategy", "unknown strategy %q: must be one of smart_balance, fastest_wins, high_impact, deadline_driven", name)
}

// NormalizeRole canonicalises a role selector. An empty selector means
// developer.
func NormalizeRole(role models.Role) (models.Role, error) {
	switch models.Role(strings.ToLower(strings.TrimSpace(string(role)))) {
	case "", models.RoleDeveloper:
		return models.RoleDeveloper, nil
	case models.RoleProgramManager:
		return models.RoleProgramManager, nil
	}
	return "", validationErrorf("role", "unknown role %q: must be one of developer, program_manager", role)
}

// ResolvedStrategy is a validated strategy selection.
type ResolvedStrategy struct {
	Strategy models.StrategyName
	Role     models.Role
	Weights  models.Weights
	Custom   bool
}

// Resolve validates a strategy selection and looks up or builds its weights.
// It is the only place weights are validated. A rejected override is never
// renormalised or partially applied.
func Resolve(req models.AnalysisRequest) (ResolvedStrategy, error) {
	name, pinned, err := NormalizeStrategy(req.Strategy)
	if err != nil {
		return ResolvedStrategy{}, err
	}
	role := req.Role
	if pinned != "" {
		role = pinned
	}
	r, err := NormalizeRole(role)
	if err != nil {
		return ResolvedStrategy{}, err
	}

	resolved := ResolvedStrategy{Strategy: name, Role: r}
	switch {
	case req.Override != nil:
		if !name.IsSmartBalance() {
			return ResolvedStrategy{}, validationErrorf("custom_weights", "custom weights can only be used with the Smart Balance strategy")
		}
		w, err := WeightsFromOverride(*req.Override)
		if err != nil {
			return ResolvedStrategy{}, err
		}
		resolved.Weights = w
		resolved.Custom = true
	case name == models.StrategySmartBalance && r == models.RoleProgramManager:
		resolved.Weights = programManagerWeights
	case name == models.StrategySmartBalance:
		resolved.Weights = developerWeights
	default:
		resolved.Weights = fixedStrategyWeights[name]
	}
	return resolved, nil
}

// ResolveWeights is Resolve reduced to the weight vector.
func ResolveWeights(strategy models.StrategyName, role models.Role, override *models.WeightOverride) (models.Weights, error) {
	resolved, err := Resolve(models.AnalysisRequest{Strategy: strategy, Role: role, Override: override})
	if err != nil {
		return models.Weights{}, err
	}
	return resolved.Weights, nil
}

// WeightsFromOverride validates integer percentages and converts them to
// fractional weights.
func WeightsFromOverride(o models.WeightOverride) (models.Weights, error) {
	fields := []struct {
		name  string
		value *int
	}{
		{"urgency", o.Urgency},
		{"importance", o.Importance},
		{"effort", o.Effort},
		{"dependencies", o.Dependencies},
	}

	var missing []string
	total := 0
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
			continue
		}
		if *f.value < 0 || *f.value > 100 {
			return models.Weights{}, validationErrorf("custom_weights", "weight %q must be between 0 and 100, got %d", f.name, *f.value)
		}
		total += *f.value
	}
	if len(missing) > 0 {
		return models.Weights{}, validationErrorf("custom_weights", "custom weights must include urgency, importance, effort, dependencies (missing: %s)", strings.Join(missing, ", "))
	}
	if total != 100 {
		return models.Weights{}, validationErrorf("custom_weights", "weights must sum to 100%%, current sum: %d%%", total)
	}

	return models.Weights{
		Urgency:    float64(*o.Urgency) / 100,
		Importance: float64(*o.Importance) / 100,
		Effort:     float64(*o.Effort) / 100,
		Dependency: float64(*o.Dependencies) / 100,
	}, nil
}

// ValidWeights reports whether w is a usable weight vector: no negative
// entries and a total of one within floating tolerance.
func ValidWeights(w models.Weights) error {
	for _, v := range []float64{w.Urgency, w.Importance, w.Effort, w.Dependency} {
		if v < 0 {
			return validationErrorf("weights", "negative weight %v", v)
		}
	}
	if math.Abs(w.Sum()-1) > weightTolerance {
		return validationErrorf("weights", "weights must sum to 1.0, got %.4f", w.Sum())
	}
	return nil
}
