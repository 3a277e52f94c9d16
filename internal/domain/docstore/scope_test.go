package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScopedPathsRequireIdentity(t *testing.T) {
	for name, fn := range map[string]func(string) (string, bool){
		"user":      UserPath,
		"patients":  PatientsPath,
		"dietPlans": DietPlansPath,
		"financial": FinancialPath,
		"chat":      ChatPath,
		"messages":  MessagesPath,
	} {
		path, ok := fn("")
		assert.False(t, ok, name)
		assert.Empty(t, path, name)
	}

	for name, fn := range map[string]func(string) (Query, bool){
		"patients":     Patients,
		"dietPlans":    DietPlans,
		"financial":    Financial,
		"appointments": Appointments,
		"chats":        Chats,
		"messages":     Messages,
	} {
		_, ok := fn("")
		assert.False(t, ok, name)
	}

	_, ok := FinancialBetween("", time.Now(), time.Now())
	assert.False(t, ok)
	_, ok = DocPath("users/a/patients", "")
	assert.False(t, ok)
}

func TestScopedPathsAreOwnedByIdentity(t *testing.T) {
	path, ok := PatientsPath("nutri-1")
	assert.True(t, ok)
	assert.Equal(t, "users/nutri-1/patients", path)

	q, ok := DietPlans("nutri-1")
	assert.True(t, ok)
	assert.Equal(t, "users/nutri-1/dietPlans", q.Collection)

	q, ok = Appointments("nutri-1")
	assert.True(t, ok)
	assert.Equal(t, AppointmentsCollection, q.Collection)
	assert.Equal(t, []Filter{{Field: "nutritionistId", Op: OpEqual, Value: "nutri-1"}}, q.Filters)

	q, ok = Chats("nutri-1")
	assert.True(t, ok)
	assert.Equal(t, []Filter{{Field: "participants", Op: OpArrayContains, Value: "nutri-1"}}, q.Filters)
	assert.Equal(t, []OrderBy{{Field: "updatedAt", Desc: true}}, q.Orders)

	path, ok = MessagesPath("c1")
	assert.True(t, ok)
	assert.Equal(t, "chats/c1/messages", path)
}

func TestQueryBuildersDoNotShareState(t *testing.T) {
	base := Query{Collection: "c"}.Where("a", OpEqual, 1)
	left := base.Where("b", OpEqual, 2)
	right := base.Where("c", OpEqual, 3)

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "b", left.Filters[1].Field)
	assert.Equal(t, "c", right.Filters[1].Field)
	assert.Equal(t, 5, base.WithLimit(5).Limit)
	assert.Equal(t, 0, base.Limit)
}
