package extract

import (
	"context"
	"strings"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/carebridge-health/dme-orders/pkg/taxonomy"
	"github.com/google/uuid"
)

// Parser is the rule-based note-to-order engine. It is stateless per
// call; concurrent use needs no synchronization.
type Parser struct {
	tax       taxonomy.Taxonomy
	validator *Validator
	now       func() time.Time
}

func NewParser(tax taxonomy.Taxonomy) *Parser {
	return &Parser{
		tax:       tax,
		validator: NewValidator(tax),
		now:       time.Now,
	}
}

// ParseNote runs the first phase: field extraction over raw text, then
// note validation. Panics are recovered into a parsing_failed error.
func (p *Parser) ParseNote(rawText string) (note *models.PhysicianNote, err error) {
	defer func() {
		if r := recover(); r != nil {
			note = nil
			err = newPhaseError(KindParsingFailed, "RawText", r)
		}
	}()

	if strings.TrimSpace(rawText) == "" {
		return nil, newValidationError([]FieldError{{Field: "RawText", Message: "raw note text is empty"}})
	}

	patientID, found := ExtractPatientID(rawText)
	if !found {
		patientID = uuid.New().String()
	}

	note = &models.PhysicianNote{
		PatientName:      ExtractPatientName(rawText),
		PatientID:        patientID,
		DOB:              ExtractDOB(rawText),
		Diagnosis:        ExtractDiagnosis(rawText),
		Prescription:     p.extractPrescription(rawText),
		UsageNote:        ExtractUsageNote(rawText),
		OrderingProvider: ExtractProvider(rawText),
		NoteDate:         ExtractNoteDate(rawText, p.now().UTC()),
		RawText:          rawText,
	}

	if errs := p.validator.ValidateNote(note); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	return note, nil
}

// ExtractOrder runs the second phase: device detection, specification
// extraction and order validation over an already-parsed note. Panics
// are recovered into an extraction_failed error.
func (p *Parser) ExtractOrder(note *models.PhysicianNote) (order *models.DeviceOrder, err error) {
	defer func() {
		if r := recover(); r != nil {
			order = nil
			err = newPhaseError(KindExtractionFailed, "DeviceType", r)
		}
	}()

	deviceType := p.tax.Detect(note.RawText)
	specs := ExtractSpecifications(deviceType, note.RawText)

	order = &models.DeviceOrder{
		DeviceType:       deviceType,
		OrderingProvider: note.OrderingProvider,
		PatientName:      note.PatientName,
		PatientID:        note.PatientID,
		DOB:              note.DOB,
		Diagnosis:        note.Diagnosis,
		Specifications:   specs,
		OrderedAt:        p.now().UTC(),
	}

	if errs := p.validator.ValidateOrder(order); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	return order, nil
}

// Process runs both phases in order. The extract phase never runs
// without a successful parse phase.
func (p *Parser) Process(rawText string) (*models.DeviceOrder, error) {
	note, err := p.ParseNote(rawText)
	if err != nil {
		return nil, err
	}
	return p.ExtractOrder(note)
}

// Name identifies the parser to the strategy selector.
func (p *Parser) Name() string {
	return "rules"
}

// Extract satisfies the strategy extractor contract. The rule-based
// path is fully synchronous, so the context is not consulted.
func (p *Parser) Extract(_ context.Context, rawText string) (*models.DeviceOrder, error) {
	return p.Process(rawText)
}

// extractPrescription keeps the first sentence mentioning a device
// keyword as the raw prescription text, falling back to the whole note.
func (p *Parser) extractPrescription(rawText string) string {
	segments := strings.FieldsFunc(rawText, func(r rune) bool {
		return r == '.' || r == '\n' || r == ';'
	})
	for _, segment := range segments {
		lowered := strings.ToLower(segment)
		for _, keyword := range p.tax.Keywords() {
			if strings.Contains(lowered, keyword) {
				return strings.TrimSpace(segment)
			}
		}
	}
	return strings.TrimSpace(rawText)
}
