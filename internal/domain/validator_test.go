package domain

import "testing"

func TestValidatorStatusNormalize(t *testing.T) {
	tests := []struct {
		raw  ValidatorStatus
		want ValidatorStatus
	}{
		{raw: "active", want: StatusActive},
		{raw: " ACTIVE ", want: StatusActive},
		{raw: "VALIDATOR_STATUS_ACTIVE", want: StatusActive},
		{raw: "exited", want: StatusExited},
		{raw: "VALIDATOR_STATUS_EXITED", want: StatusExited},
		{raw: "inactive", want: "inactive"},
		{raw: "Zombie", want: "zombie"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.raw), func(t *testing.T) {
			if got := tt.raw.Normalize(); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBlocksSucceeded(t *testing.T) {
	stats := ValidatorStats{TotalBlocksProposed: 3, TotalBlocksMined: 4, TotalBlocksMissed: 9}
	if got := stats.BlocksSucceeded(); got != 7 {
		t.Fatalf("expected 7 succeeded blocks, got %d", got)
	}
}

func TestHasNetworkInfo(t *testing.T) {
	tests := []struct {
		name  string
		stats *EpochStats
		want  bool
	}{
		{name: "nil", stats: nil, want: false},
		{name: "both set", stats: &EpochStats{TotalActiveValidators: 10, TotalInactiveValidators: 2}, want: true},
		{name: "zero inactive", stats: &EpochStats{TotalActiveValidators: 10}, want: false},
		{name: "zero active", stats: &EpochStats{TotalInactiveValidators: 2}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.HasNetworkInfo(); got != tt.want {
				t.Fatalf("HasNetworkInfo() = %v, want %v", got, tt.want)
			}
		})
	}
}
