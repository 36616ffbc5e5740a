package constants

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{StatusReceived, StatusExtracting, true},
		{StatusReceived, StatusProcessed, true},
		{StatusExtracting, StatusProcessed, true},
		{StatusProcessed, StatusExtracting, false},
		{StatusProcessed, StatusReceived, false},
		{StatusExtracting, StatusReceived, false},
		{StatusReceived, StatusReceived, false},
		{StatusProcessed, StatusProcessed, false},
		{DocumentStatus("failed"), StatusProcessed, false},
		{StatusReceived, DocumentStatus("archived"), false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
