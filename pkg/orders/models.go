package orders

import (
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"gorm.io/datatypes"
)

const (
	StatusExtracted = "extracted"
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// Record is the persisted form of an extracted device order.
type Record struct {
	ID             string            `json:"id" gorm:"primaryKey;column:id"`
	PatientID      string            `json:"patient_id" gorm:"column:patient_id"`
	PatientName    string            `json:"patient_name" gorm:"column:patient_name"`
	DOB            string            `json:"dob" gorm:"column:dob"`
	Diagnosis      string            `json:"diagnosis" gorm:"column:diagnosis"`
	DeviceType     string            `json:"device_type" gorm:"column:device_type"`
	Provider       string            `json:"provider" gorm:"column:provider"`
	Specifications datatypes.JSONMap `json:"specifications" gorm:"column:specifications;type:jsonb"`
	Strategy       string            `json:"strategy" gorm:"column:strategy"`
	Status         string            `json:"status" gorm:"column:status"`
	Error          string            `json:"error,omitempty" gorm:"column:error"`
	RetryCount     int               `json:"retry_count" gorm:"column:retry_count"`
	OrderedAt      time.Time         `json:"ordered_at" gorm:"column:ordered_at"`
	SubmittedAt    *time.Time        `json:"submitted_at,omitempty" gorm:"column:submitted_at"`
	CreatedAt      time.Time         `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "device_orders"
}

// Order rebuilds the domain order from the stored record.
func (r *Record) Order() models.DeviceOrder {
	return models.DeviceOrder{
		DeviceType:       r.DeviceType,
		OrderingProvider: r.Provider,
		PatientName:      r.PatientName,
		PatientID:        r.PatientID,
		DOB:              r.DOB,
		Diagnosis:        r.Diagnosis,
		Specifications:   map[string]interface{}(r.Specifications),
		OrderedAt:        r.OrderedAt,
	}
}
