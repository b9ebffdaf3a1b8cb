package system

import "testing"

func TestParseSize(t *testing.T) {
	gb := func(f float64) uint64 { return uint64(f * 1024 * 1024 * 1024) }
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"512", 512, false},
		{"1K", 1024, false},
		{"500G", 500 * 1024 * 1024 * 1024, false},
		{"1.5T", 3 * 1024 * 1024 * 1024 * 1024 / 2, false},
		{"931.5G", gb(931.5), false},
		{"14.9GiB", gb(14.9), false},
		{"2MB", 2 * 1024 * 1024, false},
		{"8B", 8, false},
		{"1,5M", 1572864, false},
		{"", 0, true},
		{"lots", 0, true},
		{"-1G", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
