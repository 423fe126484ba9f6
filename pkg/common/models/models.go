package models

import (
	"time"
)

// Specification keys shared by the rule-based extractor, the LLM contract
// and the wire payload.
const (
	SpecMaskType       = "mask_type"
	SpecPressure       = "pressure"
	SpecAddOns         = "add_ons"
	SpecQualifier      = "qualifier"
	SpecLiters         = "liters"
	SpecDeliveryMethod = "delivery_method"
	SpecUsage          = "usage"
	SpecMedication     = "medication"
	SpecFrequency      = "frequency"
	SpecType           = "type"
	SpecCategory       = "category"
	SpecMattress       = "mattress"
)

// PhysicianNote is the normalized representation of one free-text note.
// Built once by the parser from raw text and immutable afterwards.
type PhysicianNote struct {
	PatientName      string    `json:"patient_name"`
	PatientID        string    `json:"patient_id"`
	DOB              string    `json:"dob"`
	Diagnosis        string    `json:"diagnosis"`
	Prescription     string    `json:"prescription"`
	UsageNote        string    `json:"usage_note,omitempty"`
	OrderingProvider string    `json:"ordering_provider"`
	NoteDate         time.Time `json:"note_date"`
	RawText          string    `json:"raw_text"`
}

// DeviceOrder is the structured result handed downstream.
type DeviceOrder struct {
	DeviceType       string                 `json:"device_type"`
	OrderingProvider string                 `json:"ordering_provider"`
	PatientName      string                 `json:"patient_name"`
	PatientID        string                 `json:"patient_id"`
	DOB              string                 `json:"dob"`
	Diagnosis        string                 `json:"diagnosis"`
	Specifications   map[string]interface{} `json:"specifications"`
	OrderedAt        time.Time              `json:"ordered_at"`
}

// OrderPayload is the snake_case wire shape consumed by the external
// ordering API and produced by the LLM contract. Optional fields are
// omitted, never emitted as null.
type OrderPayload struct {
	Device           string   `json:"device"`
	OrderingProvider string   `json:"ordering_provider"`
	PatientName      string   `json:"patient_name"`
	DOB              string   `json:"dob"`
	Diagnosis        string   `json:"diagnosis"`
	MaskType         string   `json:"mask_type,omitempty"`
	Pressure         string   `json:"pressure,omitempty"`
	AddOns           []string `json:"add_ons,omitempty"`
	Qualifier        string   `json:"qualifier,omitempty"`
	Liters           string   `json:"liters,omitempty"`
	DeliveryMethod   string   `json:"delivery_method,omitempty"`
	Usage            string   `json:"usage,omitempty"`
	Medication       string   `json:"medication,omitempty"`
	Frequency        string   `json:"frequency,omitempty"`
	Type             string   `json:"type,omitempty"`
	Category         string   `json:"category,omitempty"`
	Mattress         *bool    `json:"mattress,omitempty"`
}

// Payload maps the order onto the wire contract.
func (o DeviceOrder) Payload() OrderPayload {
	p := OrderPayload{
		Device:           o.DeviceType,
		OrderingProvider: o.OrderingProvider,
		PatientName:      o.PatientName,
		DOB:              o.DOB,
		Diagnosis:        o.Diagnosis,
	}
	if o.Specifications == nil {
		return p
	}
	p.MaskType = specString(o.Specifications, SpecMaskType)
	p.Pressure = specString(o.Specifications, SpecPressure)
	p.Qualifier = specString(o.Specifications, SpecQualifier)
	p.Liters = specString(o.Specifications, SpecLiters)
	p.DeliveryMethod = specString(o.Specifications, SpecDeliveryMethod)
	p.Usage = specString(o.Specifications, SpecUsage)
	p.Medication = specString(o.Specifications, SpecMedication)
	p.Frequency = specString(o.Specifications, SpecFrequency)
	p.Type = specString(o.Specifications, SpecType)
	p.Category = specString(o.Specifications, SpecCategory)
	p.AddOns = specStrings(o.Specifications, SpecAddOns)
	if v, ok := o.Specifications[SpecMattress]; ok {
		if b, ok := v.(bool); ok {
			p.Mattress = &b
		}
	}
	return p
}

func specString(specs map[string]interface{}, key string) string {
	if v, ok := specs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func specStrings(specs map[string]interface{}, key string) []string {
	v, ok := specs[key]
	if !ok {
		return nil
	}
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Event is the envelope published to the order event bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // order.extracted, order.dlq
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
