package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/internal/domain/docstore"
)

func TestNormalizeTime(t *testing.T) {
	want := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	sp := time.FixedZone("BRT", -3*3600)

	cases := []struct {
		name string
		in   interface{}
		want time.Time
	}{
		{"native", want.In(sp), want},
		{"pointer", &want, want},
		{"rfc3339", "2024-03-10T11:30:00-03:00", want},
		{"datetime-local", "2024-03-10T14:30", want},
		{"date only", "2024-03-10", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"timestamp object", map[string]interface{}{"seconds": want.Unix(), "nanoseconds": 0}, want},
		{"serialized timestamp", map[string]interface{}{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}, want},
		{"unix millis", want.UnixMilli(), want},
		{"garbage", "not a date", time.Time{}},
		{"nil", nil, time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeTime(tc.in)
			assert.True(t, tc.want.Equal(got), "got %v", got)
			if !got.IsZero() {
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestFieldsToleratesMissingAndMistypedValues(t *testing.T) {
	f := Fields{"name": 42, "count": "7", "flag": "yes"}

	assert.Equal(t, "", f.String("name"))
	assert.Equal(t, 7, f.Int("count"))
	assert.False(t, f.Bool("flag"))
	assert.Nil(t, f.Map("missing"))
	assert.Nil(t, f.Strings("missing"))
	assert.True(t, f.Time("missing").IsZero())
}

func TestMealCalories(t *testing.T) {
	meal := Meal{Name: "Café da manhã", Time: "07:00"}
	meal.AddItem(FoodItem{Food: "Pão", Quantity: "50", Calories: 130})
	meal.AddItem(FoodItem{Food: "Ovo", Quantity: "2", Calories: 155})
	assert.Equal(t, 285.0, meal.Calories)

	assert.True(t, meal.RemoveItem(0))
	assert.Equal(t, 155.0, meal.Calories)
	require.Len(t, meal.Items, 1)
	assert.Equal(t, "Ovo", meal.Items[0].Food)

	assert.False(t, meal.RemoveItem(3))
	assert.False(t, meal.RemoveItem(-1))
}

func TestDietPlanDuplicate(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := &DietPlan{
		ID:        "plan-1",
		Title:     "Plano A",
		PatientID: "p1",
		Meals: []Meal{
			{Name: "Almoço", Time: "12:00", Items: []FoodItem{{Food: "Arroz", Quantity: "100", Calories: 130}}},
		},
		Recommendations: []string{"Beber água"},
		CreatedAt:       created,
		UpdatedAt:       created,
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cp := plan.Duplicate(now)

	assert.Empty(t, cp.ID)
	assert.Equal(t, "Plano A - Cópia", cp.Title)
	assert.Equal(t, "p1", cp.PatientID)
	assert.Equal(t, now, cp.CreatedAt)
	assert.Equal(t, now, cp.UpdatedAt)

	cp.Meals[0].Items[0].Food = "Feijão"
	cp.Recommendations[0] = "Dormir"
	assert.Equal(t, "Arroz", plan.Meals[0].Items[0].Food)
	assert.Equal(t, "Beber água", plan.Recommendations[0])
	assert.Equal(t, created, plan.CreatedAt)
}

func TestDietPlanRoundTripKeepsMacros(t *testing.T) {
	plan := &DietPlan{Title: "Plano", Macros: Macros{Protein: 120, Carbs: 200}}
	got := DietPlanFromDocument(docstore.Document{ID: "x", Data: plan.Fields()})

	assert.Equal(t, Macros{Protein: 120, Carbs: 200}, got.Macros)
	macros := plan.Fields()["macros"].(map[string]interface{})
	assert.Len(t, macros, 4)
	assert.NotNil(t, got.Meals)
}

func TestComputeIMC(t *testing.T) {
	assert.Equal(t, 22.9, ComputeIMC(70, 175))
	assert.Equal(t, 0.0, ComputeIMC(70, 0))
	assert.Equal(t, 0.0, ComputeIMC(0, 175))
}

func TestPatientAddMeasurementKeepsHistoryOrdered(t *testing.T) {
	p := &Patient{}
	p.AddMeasurement(AnthropometricData{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Weight: 80, Height: 180})
	p.AddMeasurement(AnthropometricData{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Weight: 85, Height: 180})

	require.Len(t, p.AnthropometricData, 2)
	assert.Equal(t, 85.0, p.AnthropometricData[0].Weight)

	latest, ok := p.LatestMeasurement()
	require.True(t, ok)
	assert.Equal(t, 80.0, latest.Weight)
	assert.Equal(t, 24.7, latest.IMC)
}

func TestUserFieldsCarrySettings(t *testing.T) {
	u := &User{
		Name:                 "Ana",
		NotificationSettings: DefaultNotificationSettings(),
		PrivacySettings:      DefaultPrivacySettings(),
	}
	got := UserFromDocument(docstore.Document{ID: "u1", Data: u.Fields()})

	assert.Equal(t, DefaultNotificationSettings(), got.NotificationSettings)
	assert.Equal(t, DefaultPrivacySettings(), got.PrivacySettings)
	assert.False(t, got.NotificationSettings["marketingEmails"])
}

func TestChatCounterpart(t *testing.T) {
	chat := &Chat{Participants: []string{"a", "b"}}
	assert.Equal(t, "b", chat.Counterpart("a"))
	assert.True(t, chat.HasParticipant("b"))
	assert.False(t, chat.HasParticipant("c"))
}

func TestMessageSummary(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := &Message{SenderID: "a", Text: "Olá", Timestamp: at}
	assert.Equal(t, &LastMessage{Text: "Olá", SenderID: "a", Timestamp: at}, m.Summary())
}
