package fixture

import (
	"errors"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

func TestCheckInvariants(t *testing.T) {
	if err := CheckInvariants(sampleFixture()); err != nil {
		t.Fatalf("Expected sample fixture to pass, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(f *models.Fixture)
		want   string
	}{
		{
			name:   "gap in numbers",
			mutate: func(f *models.Fixture) { f.Scenarios[0].Runs[0].Trials[1].Number = 2 },
			want:   "constrained/seed=0/trial=1: number is 2",
		},
		{
			name: "value and values",
			mutate: func(f *models.Fixture) {
				f.Scenarios[0].Runs[0].Trials[0].Values = []float64{1}
			},
			want: "both value and values are set",
		},
		{
			name:   "pruned with value",
			mutate: func(f *models.Fixture) { f.Scenarios[0].Runs[0].Trials[1].Value = ptr(1) },
			want:   "pruned trial carries a final value",
		},
		{
			name: "pruned with constraint",
			mutate: func(f *models.Fixture) {
				f.Scenarios[0].Runs[0].Trials[1].Constraint = []float64{0, 0}
			},
			want: "pruned trial carries a constraint",
		},
		{
			name:   "constraint missing on completed trial",
			mutate: func(f *models.Fixture) { f.Scenarios[0].Runs[0].Trials = append(f.Scenarios[0].Runs[0].Trials, models.TrialRecord{Number: 2, State: models.TrialStateComplete, Value: ptr(1)}) },
			want:   "constrained scenario has no constraint",
		},
		{
			name:   "arity",
			mutate: func(f *models.Fixture) { f.Scenarios[1].Runs[0].Trials[0].Values = []float64{1} },
			want:   "values has 1 entries for 2 directions",
		},
		{
			name:   "single objective without value",
			mutate: func(f *models.Fixture) { f.Scenarios[0].Runs[0].Trials[0].Value = nil },
			want:   "has no value",
		},
		{
			name: "unordered intermediate steps",
			mutate: func(f *models.Fixture) {
				f.Scenarios[0].Runs[0].Trials[0].IntermediateValues[2].Step = 1
			},
			want: "intermediate steps are not increasing",
		},
		{
			name:   "unknown state",
			mutate: func(f *models.Fixture) { f.Scenarios[1].Runs[0].Trials[0].State = "failed" },
			want:   `unknown state "failed"`,
		},
		{
			name:   "duplicate scenario",
			mutate: func(f *models.Fixture) { f.Scenarios[1].Name = "constrained" },
			want:   "duplicate scenario",
		},
		{
			name:   "timestamp without zone",
			mutate: func(f *models.Fixture) { f.Meta.GeneratedAt = "2025-01-02T03:04:05" },
			want:   "meta.generated_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sampleFixture()
			tt.mutate(f)
			err := CheckInvariants(f)
			var ierr *InvariantError
			if !errors.As(err, &ierr) {
				t.Fatalf("Expected InvariantError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected violation containing %q, got:\n%v", tt.want, err)
			}
		})
	}
}
