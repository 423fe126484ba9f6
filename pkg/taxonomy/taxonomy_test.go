package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectPriorityOrder(t *testing.T) {
	tax := Default()

	// Both keywords present; the priority list, not text position, wins.
	device := tax.Detect("Patient has a wheelchair at home but needs a CPAP for sleep apnea")
	if device != DeviceCPAP {
		t.Fatalf("expected %s, got %s", DeviceCPAP, device)
	}
}

func TestDetectCaseInsensitive(t *testing.T) {
	tax := Default()
	if device := tax.Detect("Needs a NEBULIZER for breathing treatments"); device != DeviceNebulizer {
		t.Fatalf("expected %s, got %s", DeviceNebulizer, device)
	}
}

func TestDetectUnknown(t *testing.T) {
	tax := Default()
	if device := tax.Detect("Patient needs a cane"); device != Unknown {
		t.Fatalf("expected %s, got %s", Unknown, device)
	}
}

func TestDetectDeterministic(t *testing.T) {
	tax := Default()
	text := "walker and hospital bed and oxygen"
	first := tax.Detect(text)
	for i := 0; i < 10; i++ {
		if got := tax.Detect(text); got != first {
			t.Fatalf("detection unstable: %s then %s", first, got)
		}
	}
	if first != DeviceOxygen {
		t.Fatalf("expected %s by priority, got %s", DeviceOxygen, first)
	}
}

func TestLoadDefaultsWithoutPath(t *testing.T) {
	tax, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := tax.Names()
	if len(names) != 7 {
		t.Fatalf("expected 7 device types, got %d", len(names))
	}
	if names[0] != DeviceCPAP {
		t.Fatalf("expected %s first, got %s", DeviceCPAP, names[0])
	}
}

func TestLoadMalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte("devices: [not: valid: yaml"), 0o600); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	tax, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if device := tax.Detect("Patient needs a CPAP"); device != DeviceCPAP {
		t.Fatalf("expected default taxonomy to detect %s, got %s", DeviceCPAP, device)
	}
}

func TestLoadEmptyDeviceListFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte("devices: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	tax, err := Load(path)
	if err == nil {
		t.Fatal("expected error for empty device list")
	}
	if len(tax.Names()) != 7 {
		t.Fatalf("expected default taxonomy, got %v", tax.Names())
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	content := []byte("devices:\n  - name: Crutches\n    keywords: [crutch, crutches]\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	tax, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if device := tax.Detect("needs crutches after surgery"); device != "Crutches" {
		t.Fatalf("expected Crutches, got %s", device)
	}
}
