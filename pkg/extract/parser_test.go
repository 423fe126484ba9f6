package extract

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/taxonomy"
)

func fixedParser() *Parser {
	p := NewParser(taxonomy.Default())
	p.now = func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestProcessCPAPScenario(t *testing.T) {
	p := fixedParser()
	order, err := p.Process("Patient needs a CPAP with full face mask and humidifier. AHI > 20. Ordered by Dr. Cameron.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.DeviceType != taxonomy.DeviceCPAP {
		t.Fatalf("expected CPAP, got %s", order.DeviceType)
	}
	if order.OrderingProvider != "Dr. Cameron" {
		t.Fatalf("expected Dr. Cameron, got %q", order.OrderingProvider)
	}
	if order.Specifications["mask_type"] != "full face" {
		t.Fatalf("expected full face mask, got %v", order.Specifications["mask_type"])
	}
	addOns, _ := order.Specifications["add_ons"].([]string)
	found := false
	for _, a := range addOns {
		if a == "humidifier" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected humidifier add-on, got %v", addOns)
	}
	if order.Specifications["qualifier"] != ">20" {
		t.Fatalf("expected >20 qualifier, got %v", order.Specifications["qualifier"])
	}
	if order.PatientName != UnknownValue {
		t.Fatalf("expected Unknown patient name, got %q", order.PatientName)
	}
}

func TestProcessNoProviderStillValidates(t *testing.T) {
	p := fixedParser()
	order, err := p.Process("Patient requires a standard walker for support around the home")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderingProvider != UnknownProvider {
		t.Fatalf("expected %q, got %q", UnknownProvider, order.OrderingProvider)
	}
	if order.DeviceType != taxonomy.DeviceWalker {
		t.Fatalf("expected Walker, got %s", order.DeviceType)
	}
}

func TestParseNoteEmptyInput(t *testing.T) {
	p := fixedParser()
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := p.ParseNote(input)
		if err == nil {
			t.Fatalf("expected error for input %q", input)
		}
		ee, ok := AsError(err)
		if !ok || ee.Kind != KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
}

func TestProcessMissingDeviceKeywordFails(t *testing.T) {
	p := fixedParser()
	_, err := p.Process("Patient Name: John Doe. Complains of seasonal allergies.")
	ee, ok := AsError(err)
	if !ok || ee.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ee.Fields) != 1 || ee.Fields[0].Field != "RawText" {
		t.Fatalf("expected RawText-targeted error, got %v", ee.Fields)
	}
}

func TestProcessCPAPMissingSpecsFails(t *testing.T) {
	p := fixedParser()
	_, err := p.Process("Patient needs a CPAP machine. Ordered by Dr. Cameron.")
	ee, ok := AsError(err)
	if !ok || ee.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	var joined []string
	for _, fe := range ee.Fields {
		if fe.Field != "Specifications" {
			t.Fatalf("expected Specifications-targeted errors, got %v", ee.Fields)
		}
		joined = append(joined, fe.Message)
	}
	all := strings.Join(joined, " ")
	if !strings.Contains(all, "mask type") || !strings.Contains(all, "pressure settings") {
		t.Fatalf("expected missing mask type and pressure settings, got %v", ee.Fields)
	}
}

func TestProcessDeterministic(t *testing.T) {
	p := fixedParser()
	text := "MRN: 12345. Patient Name: John Doe. Needs oxygen at 2 L/min via nasal cannula, continuous. Ordered by Dr. Wilson."

	first, err := p.Process(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Process(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rule-based extraction not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if first.PatientID != "12345" {
		t.Fatalf("expected MRN-derived patient id, got %q", first.PatientID)
	}
}

func TestExtractPhaseRequiresParsedNote(t *testing.T) {
	p := fixedParser()
	note, err := p.ParseNote("Patient needs a hospital bed, electric adjustable, with mattress. Ordered by Dr. Chase.")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	order, err := p.ExtractOrder(note)
	if err != nil {
		t.Fatalf("unexpected extract error: %v", err)
	}
	if order.DeviceType != taxonomy.DeviceHospitalBed {
		t.Fatalf("expected Hospital Bed, got %s", order.DeviceType)
	}
	if order.PatientID != note.PatientID {
		t.Fatal("expected order to carry the note's patient id")
	}
	if order.Specifications["mattress"] != true {
		t.Fatalf("expected mattress included, got %v", order.Specifications["mattress"])
	}
}
