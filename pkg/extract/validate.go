package extract

import (
	"fmt"
	"strings"

	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/carebridge-health/dme-orders/pkg/taxonomy"
)

const (
	minNoteLength  = 10
	maxNoteLength  = 10000
	maxFieldLength = 120
	maxIDLength    = 64
)

// genericDMETerms pass the device-keyword gate even when no concrete
// device type can be detected yet.
var genericDMETerms = []string{"dme", "durable medical equipment", "respiratory", "mobility"}

type requiredSpec struct {
	key     string
	concept string
}

// requiredSpecs lists device-specific specification keys an order must
// carry to pass validation.
var requiredSpecs = map[string][]requiredSpec{
	taxonomy.DeviceOxygen: {
		{key: models.SpecLiters, concept: "flow rate"},
		{key: models.SpecDeliveryMethod, concept: "delivery method"},
	},
}

// papSpecs are the clinical settings a PAP order is expected to carry.
// An order with neither is unusable; one of the two is enough to
// dispense against.
var papSpecs = map[string][]requiredSpec{
	taxonomy.DeviceCPAP: {
		{key: models.SpecMaskType, concept: "mask type"},
		{key: models.SpecPressure, concept: "pressure settings"},
	},
	taxonomy.DeviceBiPAP: {
		{key: models.SpecMaskType, concept: "mask type"},
		{key: models.SpecPressure, concept: "pressure settings"},
	},
}

// Validator gates parsed notes and derived orders against the rule set.
type Validator struct {
	keywords []string
	allowed  map[string]struct{}
}

func NewValidator(tax taxonomy.Taxonomy) *Validator {
	keywords := append(tax.Keywords(), genericDMETerms...)

	allowed := make(map[string]struct{})
	for _, name := range tax.Names() {
		allowed[name] = struct{}{}
	}

	return &Validator{keywords: keywords, allowed: allowed}
}

// ValidateNote checks the parsed note. An empty result means the note
// passed.
func (v *Validator) ValidateNote(note *models.PhysicianNote) []FieldError {
	var errs []FieldError

	raw := strings.TrimSpace(note.RawText)
	switch {
	case raw == "":
		errs = append(errs, FieldError{Field: "RawText", Message: "raw note text is empty"})
	case len(raw) < minNoteLength:
		errs = append(errs, FieldError{Field: "RawText", Message: fmt.Sprintf("raw note text shorter than %d characters", minNoteLength)})
	case len(raw) > maxNoteLength:
		errs = append(errs, FieldError{Field: "RawText", Message: fmt.Sprintf("raw note text longer than %d characters", maxNoteLength)})
	}

	errs = append(errs, checkBounded("PatientID", note.PatientID, maxIDLength)...)
	errs = append(errs, checkBounded("OrderingProvider", note.OrderingProvider, maxFieldLength)...)
	errs = append(errs, checkBounded("PatientName", note.PatientName, maxFieldLength)...)

	if raw != "" && !v.containsDeviceKeyword(raw) {
		errs = append(errs, FieldError{Field: "RawText", Message: "no recognized DME device keyword found"})
	}

	return errs
}

// ValidateOrder checks the derived order, including device-specific
// required specifications.
func (v *Validator) ValidateOrder(order *models.DeviceOrder) []FieldError {
	var errs []FieldError

	if order.DeviceType == "" {
		errs = append(errs, FieldError{Field: "DeviceType", Message: "device type is empty"})
	} else if _, ok := v.allowed[order.DeviceType]; !ok {
		errs = append(errs, FieldError{Field: "DeviceType", Message: fmt.Sprintf("device type '%s' is not in the allowed set", order.DeviceType)})
	}

	errs = append(errs, checkBounded("OrderingProvider", order.OrderingProvider, maxFieldLength)...)
	errs = append(errs, checkBounded("PatientID", order.PatientID, maxIDLength)...)

	if order.Specifications == nil {
		errs = append(errs, FieldError{Field: "Specifications", Message: "specifications mapping is nil"})
		return errs
	}

	for _, required := range requiredSpecs[order.DeviceType] {
		if _, ok := order.Specifications[required.key]; !ok {
			errs = append(errs, FieldError{
				Field:   "Specifications",
				Message: fmt.Sprintf("missing required %s for %s", required.concept, order.DeviceType),
			})
		}
	}

	if pap, ok := papSpecs[order.DeviceType]; ok {
		missing := make([]requiredSpec, 0, len(pap))
		for _, required := range pap {
			if _, found := order.Specifications[required.key]; !found {
				missing = append(missing, required)
			}
		}
		if len(missing) == len(pap) {
			for _, required := range missing {
				errs = append(errs, FieldError{
					Field:   "Specifications",
					Message: fmt.Sprintf("missing required %s for %s", required.concept, order.DeviceType),
				})
			}
		}
	}

	return errs
}

func (v *Validator) containsDeviceKeyword(raw string) bool {
	lowered := strings.ToLower(raw)
	for _, keyword := range v.keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func checkBounded(field, value string, max int) []FieldError {
	if strings.TrimSpace(value) == "" {
		return []FieldError{{Field: field, Message: field + " is empty"}}
	}
	if len(value) > max {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s longer than %d characters", field, max)}}
	}
	return nil
}
