package entity

import (
	"time"

	"nutriflow/internal/domain/docstore"
)

const (
	RecordIncome  = "income"
	RecordExpense = "expense"

	RecordPending  = "pending"
	RecordPaid     = "paid"
	RecordCanceled = "canceled"

	DefaultCategory = "other"
)

// FinancialRecord is a single-currency ledger line owned by one professional.
// PatientName follows the same copy-at-write rule as Appointment.
type FinancialRecord struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Value         float64   `json:"value"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	Category      string    `json:"category,omitempty"`
	PatientID     string    `json:"patientId,omitempty"`
	PatientName   string    `json:"patientName,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func FinancialRecordFromDocument(doc docstore.Document) *FinancialRecord {
	f := Fields(doc.Data)
	return &FinancialRecord{
		ID:            doc.ID,
		Description:   f.String("description"),
		Value:         f.Float("value"),
		Date:          f.Time("date"),
		Type:          f.String("type"),
		Category:      f.String("category"),
		PatientID:     f.String("patientId"),
		PatientName:   f.String("patientName"),
		PaymentMethod: f.String("paymentMethod"),
		Status:        f.String("status"),
		CreatedAt:     f.Time("createdAt"),
		UpdatedAt:     f.Time("updatedAt"),
	}
}

func (r *FinancialRecord) Fields() map[string]interface{} {
	m := map[string]interface{}{
		"description": r.Description,
		"value":       r.Value,
		"date":        r.Date,
		"type":        r.Type,
		"status":      r.Status,
		"createdAt":   r.CreatedAt,
		"updatedAt":   r.UpdatedAt,
	}
	putIf(m, "category", r.Category)
	putIf(m, "patientId", r.PatientID)
	putIf(m, "patientName", r.PatientName)
	putIf(m, "paymentMethod", r.PaymentMethod)
	return m
}

var categoryLabels = map[string]string{
	"consultation": "Consultas",
	"followup":     "Retorno",
	"subscription": "Assinatura",
	"equipment":    "Equipamentos",
	"marketing":    "Marketing",
	"office":       "Escritório",
	"other":        "Outros",
}

// CategoryLabel returns the display name of a category, or the raw value
// when it is not one of the known ones.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}
