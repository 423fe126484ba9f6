package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/carebridge-health/dme-orders/pkg/taxonomy"
)

func validNote(rawText string) *models.PhysicianNote {
	return &models.PhysicianNote{
		PatientName:      "John Doe",
		PatientID:        "mrn-100",
		DOB:              "01/02/1960",
		Diagnosis:        "COPD",
		OrderingProvider: "Dr. Wilson",
		NoteDate:         time.Now().UTC(),
		RawText:          rawText,
	}
}

func TestValidateNotePasses(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	if errs := v.ValidateNote(validNote("Patient needs a CPAP for sleep apnea")); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateNoteTooShort(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	errs := v.ValidateNote(validNote("cpap"))
	if len(errs) == 0 {
		t.Fatal("expected length error")
	}
	if errs[0].Field != "RawText" {
		t.Fatalf("expected RawText error, got %s", errs[0].Field)
	}
}

func TestValidateNoteMissingDeviceKeyword(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	errs := v.ValidateNote(validNote("Patient complains of a mild headache, advised rest"))
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0].Field != "RawText" || !strings.Contains(errs[0].Message, "keyword") {
		t.Fatalf("expected RawText keyword error, got %v", errs[0])
	}
}

func TestValidateNoteGenericTermPasses(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	if errs := v.ValidateNote(validNote("Patient requires durable medical equipment for home care")); len(errs) != 0 {
		t.Fatalf("expected generic DME term to pass, got %v", errs)
	}
}

func TestValidateNoteEmptyProvider(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	note := validNote("Patient needs a walker for mobility")
	note.OrderingProvider = ""
	errs := v.ValidateNote(note)
	if len(errs) != 1 || errs[0].Field != "OrderingProvider" {
		t.Fatalf("expected OrderingProvider error, got %v", errs)
	}
}

func validOrder(deviceType string, specs map[string]interface{}) *models.DeviceOrder {
	return &models.DeviceOrder{
		DeviceType:       deviceType,
		OrderingProvider: "Dr. Wilson",
		PatientName:      "John Doe",
		PatientID:        "mrn-100",
		DOB:              "01/02/1960",
		Diagnosis:        "COPD",
		Specifications:   specs,
		OrderedAt:        time.Now().UTC(),
	}
}

func TestValidateOrderUnknownDeviceRejected(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	errs := v.ValidateOrder(validOrder(taxonomy.Unknown, map[string]interface{}{}))
	if len(errs) != 1 || errs[0].Field != "DeviceType" {
		t.Fatalf("expected DeviceType error, got %v", errs)
	}
}

func TestValidateOrderNilSpecs(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	errs := v.ValidateOrder(validOrder(taxonomy.DeviceWalker, nil))
	if len(errs) != 1 || errs[0].Field != "Specifications" {
		t.Fatalf("expected Specifications error, got %v", errs)
	}
}

func TestValidateOrderOxygenRequiredSpecs(t *testing.T) {
	v := NewValidator(taxonomy.Default())
	errs := v.ValidateOrder(validOrder(taxonomy.DeviceOxygen, map[string]interface{}{}))
	if len(errs) != 2 {
		t.Fatalf("expected two errors, got %v", errs)
	}
	joined := errs[0].Message + " " + errs[1].Message
	if !strings.Contains(joined, "flow rate") || !strings.Contains(joined, "delivery method") {
		t.Fatalf("expected flow rate and delivery method errors, got %v", errs)
	}

	complete := map[string]interface{}{
		models.SpecLiters:         "2 L/min",
		models.SpecDeliveryMethod: "nasal cannula",
	}
	if errs := v.ValidateOrder(validOrder(taxonomy.DeviceOxygen, complete)); len(errs) != 0 {
		t.Fatalf("expected complete oxygen order to pass, got %v", errs)
	}
}

func TestValidateOrderPAPNeedsMaskOrPressure(t *testing.T) {
	v := NewValidator(taxonomy.Default())

	errs := v.ValidateOrder(validOrder(taxonomy.DeviceCPAP, map[string]interface{}{}))
	if len(errs) != 2 {
		t.Fatalf("expected two errors, got %v", errs)
	}
	for _, fe := range errs {
		if fe.Field != "Specifications" {
			t.Fatalf("expected Specifications errors, got %v", errs)
		}
	}
	joined := errs[0].Message + " " + errs[1].Message
	if !strings.Contains(joined, "mask type") || !strings.Contains(joined, "pressure settings") {
		t.Fatalf("expected mask type and pressure settings errors, got %v", errs)
	}

	maskOnly := map[string]interface{}{models.SpecMaskType: "full face"}
	if errs := v.ValidateOrder(validOrder(taxonomy.DeviceCPAP, maskOnly)); len(errs) != 0 {
		t.Fatalf("expected mask-only CPAP order to pass, got %v", errs)
	}

	pressureOnly := map[string]interface{}{models.SpecPressure: "10 cmH2O"}
	if errs := v.ValidateOrder(validOrder(taxonomy.DeviceBiPAP, pressureOnly)); len(errs) != 0 {
		t.Fatalf("expected pressure-only BiPAP order to pass, got %v", errs)
	}
}
