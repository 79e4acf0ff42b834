package scheduler

import "testing"

func TestParseDailyRunTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"02:00", "0 2 * * *"},
		{"03:30", "30 3 * * *"},
		{"23:59", "59 23 * * *"},
		{"00:00", "0 0 * * *"},
		{"25:00", "0 2 * * *"},
		{"12:75", "0 2 * * *"},
		{"garbage", "0 2 * * *"},
		{"", "0 2 * * *"},
	}
	for _, tt := range tests {
		if got := parseDailyRunTime(tt.in); got != tt.want {
			t.Errorf("parseDailyRunTime(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
