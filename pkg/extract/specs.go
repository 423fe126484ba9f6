package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/carebridge-health/dme-orders/pkg/taxonomy"
)

type specFunc func(text string) map[string]interface{}

// specExtractors dispatches on canonical device type. Adding a device
// means adding a routine here; existing routines stay untouched.
var specExtractors = map[string]specFunc{
	taxonomy.DeviceCPAP:        extractPAPSpecs,
	taxonomy.DeviceBiPAP:       extractPAPSpecs,
	taxonomy.DeviceOxygen:      extractOxygenSpecs,
	taxonomy.DeviceNebulizer:   extractNebulizerSpecs,
	taxonomy.DeviceWheelchair:  extractWheelchairSpecs,
	taxonomy.DeviceWalker:      extractWalkerSpecs,
	taxonomy.DeviceHospitalBed: extractHospitalBedSpecs,
}

var (
	pressureRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\s*h2o`)
	ahiRe       = regexp.MustCompile(`(?i)\bAHI\s*>\s*(\d+(?:\.\d+)?)`)
	frequencyRe = regexp.MustCompile(`(?i)(\d+)\s*times\s*(?:per\s*)?day`)

	// Flow-rate variants, tried in order; all normalize to "N L/min".
	flowRateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*L\s*per\s*minute`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*LPM`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*L/min`),
		regexp.MustCompile(`(?i)delivering\s*(\d+(?:\.\d+)?)\s*L\b`),
	}
)

// ExtractSpecifications returns the specification mapping for the
// detected device type. Unknown device types yield an empty mapping,
// never an error.
func ExtractSpecifications(deviceType, text string) map[string]interface{} {
	if fn, ok := specExtractors[deviceType]; ok {
		return fn(text)
	}
	return map[string]interface{}{}
}

func extractPAPSpecs(text string) map[string]interface{} {
	specs := map[string]interface{}{}
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "full face") {
		specs[models.SpecMaskType] = "full face"
	} else if strings.Contains(lowered, "nasal") {
		specs[models.SpecMaskType] = "nasal"
	}

	if match := pressureRe.FindStringSubmatch(text); len(match) >= 2 {
		specs[models.SpecPressure] = fmt.Sprintf("%s cmH2O", match[1])
	}

	var addOns []string
	for _, addOn := range []string{"humidifier", "heated tube"} {
		if strings.Contains(lowered, addOn) {
			addOns = append(addOns, addOn)
		}
	}
	if len(addOns) > 0 {
		specs[models.SpecAddOns] = addOns
	}

	if match := ahiRe.FindStringSubmatch(text); len(match) >= 2 {
		specs[models.SpecQualifier] = ">" + match[1]
	}

	return specs
}

func extractOxygenSpecs(text string) map[string]interface{} {
	specs := map[string]interface{}{}
	lowered := strings.ToLower(text)

	for _, re := range flowRateRes {
		if match := re.FindStringSubmatch(text); len(match) >= 2 {
			specs[models.SpecLiters] = fmt.Sprintf("%s L/min", match[1])
			break
		}
	}

	deliveryMethods := []struct {
		keyword string
		method  string
	}{
		{"cannula", "nasal cannula"},
		{"mask", "oxygen mask"},
		{"tank", "oxygen tank"},
	}
	for _, dm := range deliveryMethods {
		if strings.Contains(lowered, dm.keyword) {
			specs[models.SpecDeliveryMethod] = dm.method
			break
		}
	}

	var usages []string
	for _, usage := range []string{"sleep", "exertion", "continuous"} {
		if strings.Contains(lowered, usage) {
			usages = append(usages, usage)
		}
	}
	if len(usages) > 0 {
		specs[models.SpecUsage] = strings.Join(usages, " and ")
	}

	return specs
}

func extractNebulizerSpecs(text string) map[string]interface{} {
	specs := map[string]interface{}{}
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "albuterol") {
		specs[models.SpecMedication] = "albuterol"
	}

	if match := frequencyRe.FindStringSubmatch(text); len(match) >= 2 {
		specs[models.SpecFrequency] = fmt.Sprintf("%s times per day", match[1])
	}

	return specs
}

func extractWheelchairSpecs(text string) map[string]interface{} {
	specs := map[string]interface{}{}
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "electric") || strings.Contains(lowered, "powered") {
		specs[models.SpecType] = "electric"
	} else {
		specs[models.SpecType] = "manual"
	}

	if strings.Contains(lowered, "transport") {
		specs[models.SpecCategory] = "transport"
	}

	return specs
}

func extractWalkerSpecs(text string) map[string]interface{} {
	specs := map[string]interface{}{}
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "wheeled") || strings.Contains(lowered, "rollator") {
		specs[models.SpecType] = "wheeled"
	} else {
		specs[models.SpecType] = "standard"
	}

	return specs
}

func extractHospitalBedSpecs(text string) map[string]interface{} {
	specs := map[string]interface{}{}
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "electric") || strings.Contains(lowered, "adjustable") {
		specs[models.SpecType] = "electric adjustable"
	} else {
		specs[models.SpecType] = "standard"
	}

	specs[models.SpecMattress] = strings.Contains(lowered, "mattress")

	return specs
}
