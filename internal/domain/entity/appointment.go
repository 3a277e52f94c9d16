package entity

import (
	"time"

	"nutriflow/internal/domain/docstore"
)

const (
	AppointmentOnline     = "online"
	AppointmentPresencial = "presencial"

	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCanceled  = "canceled"
	AppointmentNoShow    = "no-show"
)

// Appointment lives in the shared appointments collection and is scoped by
// NutritionistID. PatientName is copied from the patient when the
// appointment is created and is not refreshed on rename.
type Appointment struct {
	ID                   string    `json:"id"`
	NutritionistID       string    `json:"nutritionistId"`
	PatientID            string    `json:"patientId"`
	PatientName          string    `json:"patientName"`
	Date                 time.Time `json:"date"`
	Duration             int       `json:"duration"`
	Type                 string    `json:"type"`
	Status               string    `json:"status"`
	TeleconsultationLink string    `json:"teleconsultationLink,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// End is the appointment's start plus its duration in minutes.
func (a *Appointment) End() time.Time {
	return a.Date.Add(time.Duration(a.Duration) * time.Minute)
}

func AppointmentFromDocument(doc docstore.Document) *Appointment {
	f := Fields(doc.Data)
	return &Appointment{
		ID:                   doc.ID,
		NutritionistID:       f.String("nutritionistId"),
		PatientID:            f.String("patientId"),
		PatientName:          f.String("patientName"),
		Date:                 f.Time("date"),
		Duration:             f.Int("duration"),
		Type:                 f.String("type"),
		Status:               f.String("status"),
		TeleconsultationLink: f.String("teleconsultationLink"),
		Notes:                f.String("notes"),
		CreatedAt:            f.Time("createdAt"),
		UpdatedAt:            f.Time("updatedAt"),
	}
}

func (a *Appointment) Fields() map[string]interface{} {
	m := map[string]interface{}{
		"nutritionistId": a.NutritionistID,
		"patientId":      a.PatientID,
		"patientName":    a.PatientName,
		"date":           a.Date,
		"duration":       a.Duration,
		"type":           a.Type,
		"status":         a.Status,
		"createdAt":      a.CreatedAt,
		"updatedAt":      a.UpdatedAt,
	}
	putIf(m, "teleconsultationLink", a.TeleconsultationLink)
	putIf(m, "notes", a.Notes)
	return m
}
