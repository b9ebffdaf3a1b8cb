package system

import (
	"context"
	"errors"
	"testing"

	"secureformat/internal/logging"
)

func staticDetector(name string, drives []Drive, err error) Detector {
	return DetectorFunc{Label: name, Fn: func(ctx context.Context) ([]Drive, error) {
		return drives, err
	}}
}

func TestEnumeratorMergesAndOrders(t *testing.T) {
	e := &Enumerator{
		logger: logging.Discard(),
		Detectors: []Detector{
			staticDetector("broken", nil, errors.New("powershell not found")),
			staticDetector("raw", []Drive{
				{ID: "raw-0", Kind: KindRaw, Device: `\\.\PhysicalDrive0`, Index: intPtr(0)},
				{ID: "raw-5", Kind: KindRaw, Device: `\\.\PhysicalDrive5`, Index: intPtr(5)},
			}, nil),
			staticDetector("logical", []Drive{
				{ID: `logical-E:\`, Kind: KindLogical, Device: `E:\`},
				{ID: "bad", Kind: KindLogical},
			}, nil),
			staticDetector("physical", []Drive{
				{ID: "physical-0", Kind: KindPhysical, Device: `\\.\PhysicalDrive0`, Index: intPtr(0)},
				{ID: "physical-0", Kind: KindPhysical, Device: `\\.\PhysicalDrive0`, Index: intPtr(0)},
			}, nil),
		},
	}

	drives, err := e.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	wantIDs := []string{"physical-0", `logical-E:\`, "raw-5"}
	if len(drives) != len(wantIDs) {
		t.Fatalf("got %d drives, want %d: %+v", len(drives), len(wantIDs), drives)
	}
	for i, id := range wantIDs {
		if drives[i].ID != id {
			t.Errorf("drives[%d].ID = %q, want %q", i, drives[i].ID, id)
		}
		if drives[i].Kind == "" || drives[i].Device == "" {
			t.Errorf("drives[%d] missing kind or device: %+v", i, drives[i])
		}
	}
}

func TestEnumeratorEmptyIsNotAnError(t *testing.T) {
	e := &Enumerator{
		logger:    logging.Discard(),
		Detectors: []Detector{staticDetector("none", nil, errors.New("lsblk missing"))},
	}
	drives, err := e.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if drives == nil || len(drives) != 0 {
		t.Errorf("List() = %#v, want empty non-nil slice", drives)
	}
}

func TestEnumeratorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	e := &Enumerator{
		logger: logging.Discard(),
		Detectors: []Detector{DetectorFunc{Label: "x", Fn: func(ctx context.Context) ([]Drive, error) {
			called = true
			return nil, nil
		}}},
	}
	if _, err := e.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("detector ran after cancellation")
	}
}

func TestFirstOf(t *testing.T) {
	primary := staticDetector("ps", nil, nil)
	fallback := staticDetector("wmi", []Drive{{Kind: KindPhysical, Device: "d"}}, nil)
	unused := staticDetector("never", []Drive{{Kind: KindPhysical, Device: "x"}}, nil)

	drives, err := FirstOf("chain", primary, fallback, unused).Detect(context.Background())
	if err != nil || len(drives) != 1 || drives[0].Device != "d" {
		t.Errorf("FirstOf() = %+v, %v", drives, err)
	}

	_, err = FirstOf("chain", staticDetector("a", nil, errors.New("boom"))).Detect(context.Background())
	if err == nil {
		t.Error("expected last error when every detector fails")
	}
}

func TestMarkSystem(t *testing.T) {
	drives := []Drive{
		{Kind: KindPhysical, Device: "/dev/nvme0n1"},
		{Kind: KindLogical, Device: "/dev/nvme0n1p2", Mountpoint: "/", ParentPhysical: "/dev/nvme0n1"},
		{Kind: KindLogical, Device: `C:\`},
		{Kind: KindLogical, Device: `D:\`},
	}
	MarkSystem(drives, "C:")
	want := []bool{true, true, true, false}
	for i, w := range want {
		if drives[i].System != w {
			t.Errorf("%s System = %v, want %v", drives[i].Device, drives[i].System, w)
		}
	}
}
