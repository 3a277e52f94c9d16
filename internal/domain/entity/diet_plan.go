package entity

import (
	"time"

	"nutriflow/internal/domain/docstore"
)

// CopySuffix is appended to the title of a duplicated plan.
const CopySuffix = " - Cópia"

// Macros are grams. The stored object always carries exactly these four keys.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
}

type FoodItem struct {
	Food     string  `json:"food"`
	Quantity string  `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

type Meal struct {
	Name     string     `json:"name"`
	Time     string     `json:"time"`
	Calories float64    `json:"calories"`
	Items    []FoodItem `json:"items"`
}

// SumCalories adds up the calories of the meal's current items.
func (m *Meal) SumCalories() float64 {
	var total float64
	for _, item := range m.Items {
		total += item.Calories
	}
	return total
}

// AddItem appends an item and recomputes the cached calorie total.
func (m *Meal) AddItem(item FoodItem) {
	m.Items = append(m.Items, item)
	m.Calories = m.SumCalories()
}

// RemoveItem drops the item at index i and recomputes the cached total.
// It reports false when i is out of range.
func (m *Meal) RemoveItem(i int) bool {
	if i < 0 || i >= len(m.Items) {
		return false
	}
	m.Items = append(m.Items[:i:i], m.Items[i+1:]...)
	m.Calories = m.SumCalories()
	return true
}

type DietPlan struct {
	ID              string    `json:"id,omitempty"`
	Title           string    `json:"title"`
	PatientID       string    `json:"patientId,omitempty"`
	Objective       string    `json:"objective,omitempty"`
	StartDate       time.Time `json:"startDate,omitempty"`
	EndDate         time.Time `json:"endDate,omitempty"`
	TotalCalories   float64   `json:"totalCalories"`
	Macros          Macros    `json:"macros"`
	Meals           []Meal    `json:"meals"`
	Observations    string    `json:"observations,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Duplicate returns a deep copy without identity, ready to be inserted as a
// new document.
func (p *DietPlan) Duplicate(now time.Time) *DietPlan {
	cp := *p
	cp.ID = ""
	cp.Title = p.Title + CopySuffix
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Meals = make([]Meal, len(p.Meals))
	for i, meal := range p.Meals {
		cp.Meals[i] = meal
		cp.Meals[i].Items = append([]FoodItem(nil), meal.Items...)
	}
	cp.Recommendations = append([]string(nil), p.Recommendations...)
	return &cp
}

func DietPlanFromDocument(doc docstore.Document) *DietPlan {
	f := Fields(doc.Data)
	plan := &DietPlan{
		ID:              doc.ID,
		Title:           f.String("title"),
		PatientID:       f.String("patientId"),
		Objective:       f.String("objective"),
		StartDate:       f.Time("startDate"),
		EndDate:         f.Time("endDate"),
		TotalCalories:   f.Float("totalCalories"),
		Observations:    f.String("observations"),
		Recommendations: f.Strings("recommendations"),
		CreatedAt:       f.Time("createdAt"),
		UpdatedAt:       f.Time("updatedAt"),
		Meals:           []Meal{},
	}
	if macros := f.Map("macros"); macros != nil {
		plan.Macros = Macros{
			Protein: macros.Float("protein"),
			Carbs:   macros.Float("carbs"),
			Fat:     macros.Float("fat"),
			Fiber:   macros.Float("fiber"),
		}
	}
	for _, mf := range f.Maps("meals") {
		meal := Meal{
			Name:     mf.String("name"),
			Time:     mf.String("time"),
			Calories: mf.Float("calories"),
			Items:    []FoodItem{},
		}
		for _, itf := range mf.Maps("items") {
			meal.Items = append(meal.Items, FoodItem{
				Food:     itf.String("food"),
				Quantity: itf.String("quantity"),
				Unit:     itf.String("unit"),
				Calories: itf.Float("calories"),
				Protein:  itf.Float("protein"),
				Carbs:    itf.Float("carbs"),
				Fat:      itf.Float("fat"),
				Notes:    itf.String("notes"),
			})
		}
		plan.Meals = append(plan.Meals, meal)
	}
	return plan
}

func (p *DietPlan) Fields() map[string]interface{} {
	meals := make([]interface{}, 0, len(p.Meals))
	for _, meal := range p.Meals {
		items := make([]interface{}, 0, len(meal.Items))
		for _, it := range meal.Items {
			item := map[string]interface{}{
				"food":     it.Food,
				"quantity": it.Quantity,
				"calories": it.Calories,
				"protein":  it.Protein,
				"carbs":    it.Carbs,
				"fat":      it.Fat,
			}
			putIf(item, "unit", it.Unit)
			putIf(item, "notes", it.Notes)
			items = append(items, item)
		}
		meals = append(meals, map[string]interface{}{
			"name":     meal.Name,
			"time":     meal.Time,
			"calories": meal.Calories,
			"items":    items,
		})
	}

	m := map[string]interface{}{
		"title":         p.Title,
		"totalCalories": p.TotalCalories,
		"macros": map[string]interface{}{
			"protein": p.Macros.Protein,
			"carbs":   p.Macros.Carbs,
			"fat":     p.Macros.Fat,
			"fiber":   p.Macros.Fiber,
		},
		"meals":     meals,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
	putIf(m, "patientId", p.PatientID)
	putIf(m, "objective", p.Objective)
	putIf(m, "startDate", p.StartDate)
	putIf(m, "endDate", p.EndDate)
	putIf(m, "observations", p.Observations)
	putIf(m, "recommendations", stringsToAny(p.Recommendations))
	return m
}
