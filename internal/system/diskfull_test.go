package system

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestIsDiskFull(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("write /mnt/x: no space left on device"), true},
		{errors.New("There is not enough space on the disk."), true},
		{fmt.Errorf("wrap: %w", errors.New("Disk full")), true},
		{os.ErrPermission, false},
		{errors.New("device not ready"), false},
	}
	for _, tt := range tests {
		if got := IsDiskFull(tt.err); got != tt.want {
			t.Errorf("IsDiskFull(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFreeSpaceTempDir(t *testing.T) {
	free, err := FreeSpace(t.TempDir())
	if err != nil {
		t.Skipf("free space not available: %v", err)
	}
	if free == 0 {
		t.Log("temp filesystem reports zero free bytes")
	}
}
