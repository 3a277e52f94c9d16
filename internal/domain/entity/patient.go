package entity

import (
	"math"
	"sort"
	"time"

	"nutriflow/internal/domain/docstore"
)

// Patient is owned by exactly one professional and lives under
// users/{uid}/patients.
type Patient struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	BirthDate          time.Time           `json:"birthDate"`
	Gender             string              `json:"gender,omitempty"`
	CPF                string              `json:"cpf,omitempty"`
	AnthropometricData []AnthropometricData `json:"anthropometricData,omitempty"`
	Anamnesis          *Anamnesis          `json:"anamnesis,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// AnthropometricData is one dated measurement snapshot. Zero values mean
// "not measured".
type AnthropometricData struct {
	Date               time.Time `json:"date"`
	Weight             float64   `json:"weight,omitempty"`
	Height             float64   `json:"height,omitempty"`
	IMC                float64   `json:"imc,omitempty"`
	BodyFat            float64   `json:"bodyFat,omitempty"`
	MuscleMass         float64   `json:"muscleMass,omitempty"`
	VisceralFat        float64   `json:"visceralFat,omitempty"`
	WaistCircumference float64   `json:"waistCircumference,omitempty"`
	HipCircumference   float64   `json:"hipCircumference,omitempty"`
	ArmCircumference   float64   `json:"armCircumference,omitempty"`
	ThighCircumference float64   `json:"thighCircumference,omitempty"`
	Notes              string    `json:"notes,omitempty"`
}

type Lifestyle struct {
	PhysicalActivity string `json:"physicalActivity,omitempty"`
	SleepQuality     string `json:"sleepQuality,omitempty"`
	StressLevel      string `json:"stressLevel,omitempty"`
	Smoking          bool   `json:"smoking,omitempty"`
	Alcohol          string `json:"alcohol,omitempty"`
}

type EatingHabits struct {
	MealsPerDay      int      `json:"mealsPerDay,omitempty"`
	WaterIntake      string   `json:"waterIntake,omitempty"`
	FoodPreferences  []string `json:"foodPreferences,omitempty"`
	FoodRestrictions []string `json:"foodRestrictions,omitempty"`
	Supplementation  []string `json:"supplementation,omitempty"`
}

// Anamnesis is the intake questionnaire, one per patient.
type Anamnesis struct {
	MainComplaint  string        `json:"mainComplaint,omitempty"`
	MedicalHistory string        `json:"medicalHistory,omitempty"`
	FamilyHistory  string        `json:"familyHistory,omitempty"`
	Medications    []string      `json:"medications,omitempty"`
	Allergies      []string      `json:"allergies,omitempty"`
	Lifestyle      *Lifestyle    `json:"lifestyle,omitempty"`
	EatingHabits   *EatingHabits `json:"eatingHabits,omitempty"`
	Objectives     []string      `json:"objectives,omitempty"`
	Observations   string        `json:"observations,omitempty"`
}

// ComputeIMC returns weight (kg) over height (m) squared, rounded to one
// decimal. Height is stored in centimetres.
func ComputeIMC(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}

// AddMeasurement inserts a snapshot keeping the history ordered by date.
func (p *Patient) AddMeasurement(m AnthropometricData) {
	if m.IMC == 0 {
		m.IMC = ComputeIMC(m.Weight, m.Height)
	}
	p.AnthropometricData = append(p.AnthropometricData, m)
	sort.SliceStable(p.AnthropometricData, func(i, j int) bool {
		return p.AnthropometricData[i].Date.Before(p.AnthropometricData[j].Date)
	})
}

// LatestMeasurement returns the most recent snapshot, if any.
func (p *Patient) LatestMeasurement() (AnthropometricData, bool) {
	if len(p.AnthropometricData) == 0 {
		return AnthropometricData{}, false
	}
	return p.AnthropometricData[len(p.AnthropometricData)-1], true
}

func PatientFromDocument(doc docstore.Document) *Patient {
	f := Fields(doc.Data)
	p := &Patient{
		ID:        doc.ID,
		Name:      f.String("name"),
		Email:     f.String("email"),
		Phone:     f.String("phone"),
		BirthDate: f.Time("birthDate"),
		Gender:    f.String("gender"),
		CPF:       f.String("cpf"),
		CreatedAt: f.Time("createdAt"),
		UpdatedAt: f.Time("updatedAt"),
	}
	for _, m := range f.Maps("anthropometricData") {
		p.AnthropometricData = append(p.AnthropometricData, AnthropometricData{
			Date:               m.Time("date"),
			Weight:             m.Float("weight"),
			Height:             m.Float("height"),
			IMC:                m.Float("imc"),
			BodyFat:            m.Float("bodyFat"),
			MuscleMass:         m.Float("muscleMass"),
			VisceralFat:        m.Float("visceralFat"),
			WaistCircumference: m.Float("waistCircumference"),
			HipCircumference:   m.Float("hipCircumference"),
			ArmCircumference:   m.Float("armCircumference"),
			ThighCircumference: m.Float("thighCircumference"),
			Notes:              m.String("notes"),
		})
	}
	sort.SliceStable(p.AnthropometricData, func(i, j int) bool {
		return p.AnthropometricData[i].Date.Before(p.AnthropometricData[j].Date)
	})
	if a := f.Map("anamnesis"); a != nil {
		p.Anamnesis = anamnesisFromFields(a)
	}
	return p
}

func anamnesisFromFields(f Fields) *Anamnesis {
	a := &Anamnesis{
		MainComplaint:  f.String("mainComplaint"),
		MedicalHistory: f.String("medicalHistory"),
		FamilyHistory:  f.String("familyHistory"),
		Medications:    f.Strings("medications"),
		Allergies:      f.Strings("allergies"),
		Objectives:     f.Strings("objectives"),
		Observations:   f.String("observations"),
	}
	if l := f.Map("lifestyle"); l != nil {
		a.Lifestyle = &Lifestyle{
			PhysicalActivity: l.String("physicalActivity"),
			SleepQuality:     l.String("sleepQuality"),
			StressLevel:      l.String("stressLevel"),
			Smoking:          l.Bool("smoking"),
			Alcohol:          l.String("alcohol"),
		}
	}
	if e := f.Map("eatingHabits"); e != nil {
		a.EatingHabits = &EatingHabits{
			MealsPerDay:      e.Int("mealsPerDay"),
			WaterIntake:      e.String("waterIntake"),
			FoodPreferences:  e.Strings("foodPreferences"),
			FoodRestrictions: e.Strings("foodRestrictions"),
			Supplementation:  e.Strings("supplementation"),
		}
	}
	return a
}

func (p *Patient) Fields() map[string]interface{} {
	m := map[string]interface{}{
		"name":      p.Name,
		"email":     p.Email,
		"phone":     p.Phone,
		"birthDate": p.BirthDate,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
	putIf(m, "gender", p.Gender)
	putIf(m, "cpf", p.CPF)
	if p.AnthropometricData != nil {
		history := make([]interface{}, 0, len(p.AnthropometricData))
		for _, d := range p.AnthropometricData {
			history = append(history, d.fields())
		}
		m["anthropometricData"] = history
	}
	if p.Anamnesis != nil {
		m["anamnesis"] = p.Anamnesis.Fields()
	}
	return m
}

func (d AnthropometricData) fields() map[string]interface{} {
	m := map[string]interface{}{"date": d.Date}
	for key, v := range map[string]float64{
		"weight":             d.Weight,
		"height":             d.Height,
		"imc":                d.IMC,
		"bodyFat":            d.BodyFat,
		"muscleMass":         d.MuscleMass,
		"visceralFat":        d.VisceralFat,
		"waistCircumference": d.WaistCircumference,
		"hipCircumference":   d.HipCircumference,
		"armCircumference":   d.ArmCircumference,
		"thighCircumference": d.ThighCircumference,
	} {
		if v != 0 {
			m[key] = v
		}
	}
	putIf(m, "notes", d.Notes)
	return m
}

func (a *Anamnesis) Fields() map[string]interface{} {
	m := map[string]interface{}{}
	putIf(m, "mainComplaint", a.MainComplaint)
	putIf(m, "medicalHistory", a.MedicalHistory)
	putIf(m, "familyHistory", a.FamilyHistory)
	putIf(m, "medications", stringsToAny(a.Medications))
	putIf(m, "allergies", stringsToAny(a.Allergies))
	putIf(m, "objectives", stringsToAny(a.Objectives))
	putIf(m, "observations", a.Observations)
	if a.Lifestyle != nil {
		l := map[string]interface{}{"smoking": a.Lifestyle.Smoking}
		putIf(l, "physicalActivity", a.Lifestyle.PhysicalActivity)
		putIf(l, "sleepQuality", a.Lifestyle.SleepQuality)
		putIf(l, "stressLevel", a.Lifestyle.StressLevel)
		putIf(l, "alcohol", a.Lifestyle.Alcohol)
		m["lifestyle"] = l
	}
	if a.EatingHabits != nil {
		e := map[string]interface{}{}
		if a.EatingHabits.MealsPerDay > 0 {
			e["mealsPerDay"] = a.EatingHabits.MealsPerDay
		}
		putIf(e, "waterIntake", a.EatingHabits.WaterIntake)
		putIf(e, "foodPreferences", stringsToAny(a.EatingHabits.FoodPreferences))
		putIf(e, "foodRestrictions", stringsToAny(a.EatingHabits.FoodRestrictions))
		putIf(e, "supplementation", stringsToAny(a.EatingHabits.Supplementation))
		m["eatingHabits"] = e
	}
	return m
}
