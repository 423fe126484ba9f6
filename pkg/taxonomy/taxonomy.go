package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unknown is the sentinel returned when no device keyword matches.
const Unknown = "Unknown"

// Canonical device type names.
const (
	DeviceCPAP        = "CPAP"
	DeviceBiPAP       = "BiPAP"
	DeviceOxygen      = "Oxygen"
	DeviceNebulizer   = "Nebulizer"
	DeviceWheelchair  = "Wheelchair"
	DeviceWalker      = "Walker"
	DeviceHospitalBed = "Hospital Bed"
)

type Device struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Taxonomy is an ordered priority list of device types. When keywords of
// several types co-occur in a note, the earliest entry wins.
type Taxonomy struct {
	Devices []Device `yaml:"devices" json:"devices"`
}

// Load reads a taxonomy file, or returns Default when path is empty.
// Every error branch also returns Default so a caller that warns and
// continues is never left with zero devices.
func Load(path string) (Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Default(), err
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(content, &tax); err != nil {
		return Default(), err
	}
	if len(tax.Devices) == 0 {
		return Default(), errors.New("no devices configured in taxonomy")
	}
	return tax, nil
}

// Default returns the built-in priority list. Respiratory devices come
// first so that a note mentioning both a CPAP and a wheelchair resolves
// to the CPAP.
func Default() Taxonomy {
	return Taxonomy{Devices: []Device{
		{Name: DeviceCPAP, Keywords: []string{"cpap"}},
		{Name: DeviceBiPAP, Keywords: []string{"bipap", "bi-pap", "bilevel"}},
		{Name: DeviceOxygen, Keywords: []string{"oxygen", "o2 concentrator", "oxygen concentrator"}},
		{Name: DeviceNebulizer, Keywords: []string{"nebulizer", "nebuliser"}},
		{Name: DeviceWheelchair, Keywords: []string{"wheelchair", "wheel chair"}},
		{Name: DeviceWalker, Keywords: []string{"walker", "rollator"}},
		{Name: DeviceHospitalBed, Keywords: []string{"hospital bed", "adjustable bed"}},
	}}
}

// Detect returns the first device type with a case-insensitive keyword
// substring match against the text, or Unknown. It never errors.
func (t Taxonomy) Detect(text string) string {
	lowered := strings.ToLower(text)
	for _, device := range t.Devices {
		for _, keyword := range device.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return device.Name
			}
		}
	}
	return Unknown
}

// Names returns the canonical device names in priority order.
func (t Taxonomy) Names() []string {
	names := make([]string, 0, len(t.Devices))
	for _, device := range t.Devices {
		names = append(names, device.Name)
	}
	return names
}

// Keywords returns every keyword in the taxonomy, lowercased, in
// priority order.
func (t Taxonomy) Keywords() []string {
	var keywords []string
	for _, device := range t.Devices {
		for _, keyword := range device.Keywords {
			if keyword != "" {
				keywords = append(keywords, strings.ToLower(keyword))
			}
		}
	}
	return keywords
}
