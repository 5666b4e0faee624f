package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

func override(u, i, e, d int) *models.WeightOverride {
	return &models.WeightOverride{
		Urgency:      models.Int(u),
		Importance:   models.Int(i),
		Effort:       models.Int(e),
		Dependencies: models.Int(d),
	}
}

func TestResolveWeights_BuiltinTable(t *testing.T) {
	tests := []struct {
		strategy models.StrategyName
		role     models.Role
		want     models.Weights
	}{
		{models.StrategySmartBalance, models.RoleDeveloper, models.Weights{Urgency: 0.30, Importance: 0.30, Effort: 0.20, Dependency: 0.20}},
		{models.StrategySmartBalance, "", models.Weights{Urgency: 0.30, Importance: 0.30, Effort: 0.20, Dependency: 0.20}},
		{"", "", models.Weights{Urgency: 0.30, Importance: 0.30, Effort: 0.20, Dependency: 0.20}},
		{models.StrategySmartBalance, models.RoleProgramManager, models.Weights{Urgency: 0.40, Importance: 0.35, Effort: 0.10, Dependency: 0.15}},
		{models.StrategySmartBalancePM, "", models.Weights{Urgency: 0.40, Importance: 0.35, Effort: 0.10, Dependency: 0.15}},
		{models.StrategySmartBalanceDeveloper, models.RoleProgramManager, models.Weights{Urgency: 0.30, Importance: 0.30, Effort: 0.20, Dependency: 0.20}},
		{models.StrategyFastestWins, "", models.Weights{Urgency: 0.15, Importance: 0.15, Effort: 0.60, Dependency: 0.10}},
		{models.StrategyHighImpact, models.RoleProgramManager, models.Weights{Urgency: 0.10, Importance: 0.70, Effort: 0.10, Dependency: 0.10}},
		{models.StrategyDeadlineDriven, "", models.Weights{Urgency: 0.70, Importance: 0.15, Effort: 0.05, Dependency: 0.10}},
		{"Deadline_Driven", "", models.Weights{Urgency: 0.70, Importance: 0.15, Effort: 0.05, Dependency: 0.10}},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy)+"/"+string(tt.role), func(t *testing.T) {
			got, err := ResolveWeights(tt.strategy, tt.role, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveWeights() = %+v, want %+v", got, tt.want)
			}
			if err := ValidWeights(got); err != nil {
				t.Errorf("built-in weights invalid: %v", err)
			}
		})
	}
}

func TestResolveWeights_OverrideReproducesPMWeights(t *testing.T) {
	base, err := ResolveWeights(models.StrategySmartBalance, models.RoleProgramManager, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ResolveWeights(models.StrategySmartBalance, models.RoleProgramManager, override(40, 35, 10, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != base {
		t.Errorf("override weights = %+v, want %+v", got, base)
	}
}

func TestResolveWeights_OverrideSumMustBe100(t *testing.T) {
	tests := []struct {
		name     string
		override *models.WeightOverride
		wantSum  string
	}{
		{"sum 95", override(40, 35, 10, 10), "95%"},
		{"sum 105", override(40, 35, 10, 20), "105%"},
		{"sum 0", override(0, 0, 0, 0), "0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWeights(models.StrategySmartBalance, models.RoleProgramManager, tt.override)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(vErr.Message, tt.wantSum) {
				t.Errorf("error %q does not mention sum %s", vErr.Message, tt.wantSum)
			}
		})
	}
}

func TestResolveWeights_OverrideFieldChecks(t *testing.T) {
	missing := override(50, 50, 0, 0)
	missing.Dependencies = nil

	tests := []struct {
		name     string
		override *models.WeightOverride
		want     string
	}{
		{"missing field", missing, "missing: dependencies"},
		{"negative", override(-10, 60, 25, 25), "between 0 and 100"},
		{"above 100", override(110, -10, 0, 0), "between 0 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWeights(models.StrategySmartBalance, "", tt.override)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestResolveWeights_OverrideRejectedOutsideSmartBalance(t *testing.T) {
	_, err := ResolveWeights(models.StrategyFastestWins, "", override(25, 25, 25, 25))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if vErr.Field != "custom_weights" {
		t.Errorf("Field = %q, want custom_weights", vErr.Field)
	}
}

func TestResolveWeights_UnknownSelectors(t *testing.T) {
	if _, err := ResolveWeights("random", "", nil); err == nil {
		t.Error("expected error for unknown strategy")
	}
	if _, err := ResolveWeights(models.StrategySmartBalance, "ceo", nil); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestResolve_CarriesCanonicalNames(t *testing.T) {
	r, err := Resolve(models.AnalysisRequest{Strategy: models.StrategySmartBalancePM})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Strategy != models.StrategySmartBalance {
		t.Errorf("Strategy = %q, want smart_balance", r.Strategy)
	}
	if r.Role != models.RoleProgramManager {
		t.Errorf("Role = %q, want program_manager", r.Role)
	}
	if r.Custom {
		t.Error("expected Custom to be false without override")
	}
}

func TestBuiltinStrategies_AllValid(t *testing.T) {
	rows := BuiltinStrategies()
	if len(rows) != 5 {
		t.Fatalf("expected 5 built-in rows, got %d", len(rows))
	}
	for _, row := range rows {
		if err := ValidWeights(row.Weights); err != nil {
			t.Errorf("%s/%s: %v", row.Name, row.Role, err)
		}
	}
}
