package pipeline

import "testing"

func TestRankOrdering(t *testing.T) {
	ordered := []Status{StatusReceived, StatusOcrDone, StatusChunked, StatusEmbedded, StatusIndexed}
	for i := 1; i < len(ordered); i++ {
		if Rank(ordered[i]) <= Rank(ordered[i-1]) {
			t.Errorf("Rank(%s) = %d, want > Rank(%s) = %d",
				ordered[i], Rank(ordered[i]), ordered[i-1], Rank(ordered[i-1]))
		}
	}
	if Rank(StatusError) >= Rank(StatusReceived) {
		t.Errorf("ERROR must rank below every progression status")
	}
	if Rank(Status("BOGUS")) != 0 {
		t.Errorf("unknown status must rank at the bottom")
	}
}

func TestAtOrPast(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		target  Status
		want    bool
	}{
		{"exactly at stage", StatusOcrDone, StatusOcrDone, true},
		{"past stage", StatusIndexed, StatusChunked, true},
		{"before stage", StatusReceived, StatusChunked, false},
		{"error never short-circuits", StatusError, StatusReceived, false},
		{"unknown status never short-circuits", Status("BOGUS"), StatusReceived, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AtOrPast(tt.current, tt.target); got != tt.want {
				t.Errorf("AtOrPast(%s, %s) = %v, want %v", tt.current, tt.target, got, tt.want)
			}
		})
	}
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"forward step", StatusReceived, StatusOcrDone, true},
		{"skip a step", StatusReceived, StatusChunked, false},
		{"backward step", StatusEmbedded, StatusOcrDone, false},
		{"into error from non-terminal", StatusChunked, StatusError, true},
		{"into error from indexed", StatusIndexed, StatusError, false},
		{"error to error", StatusError, StatusError, false},
		{"re-ingestion restart from indexed", StatusIndexed, StatusReceived, true},
		{"re-ingestion restart from error", StatusError, StatusReceived, true},
		{"unknown target", StatusChunked, Status("BOGUS"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAdvance(tt.from, tt.to); got != tt.want {
				t.Errorf("CanAdvance(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		stage string
		want  Status
	}{
		{StageIngest, StatusReceived},
		{StageOcr, StatusOcrDone},
		{StageChunker, StatusChunked},
		{StageEmbedder, StatusEmbedded},
		{StageIndexer, StatusIndexed},
		{"bogus", StatusError},
	}

	for _, tt := range tests {
		if got := NextStatus(tt.stage); got != tt.want {
			t.Errorf("NextStatus(%s) = %s, want %s", tt.stage, got, tt.want)
		}
	}
}
