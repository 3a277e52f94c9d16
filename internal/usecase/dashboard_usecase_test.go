package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/internal/domain/entity"
	"nutriflow/pkg/errors"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()

	// Two patients registered last month, three this month.
	past := newClinic(time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	c := newClinicOn(past.store, testNow)

	var patientIDs []string
	for _, name := range []string{"Antigo 1", "Antigo 2"} {
		p, err := past.patients.Create(ctx, "nutri", CreatePatientInput{Name: name})
		require.NoError(t, err)
		patientIDs = append(patientIDs, p.ID)
	}
	for _, name := range []string{"Novo 1", "Novo 2", "Novo 3"} {
		p, err := c.patients.Create(ctx, "nutri", CreatePatientInput{Name: name})
		require.NoError(t, err)
		patientIDs = append(patientIDs, p.ID)
	}

	for _, offset := range []time.Duration{time.Hour, 3 * time.Hour, 30 * time.Hour} {
		_, err := c.appointments.Create(ctx, "nutri", CreateAppointmentInput{PatientID: patientIDs[0], Date: testNow.Add(offset)})
		require.NoError(t, err)
	}

	for _, in := range []FinancialRecordInput{
		{Description: "Consulta", Value: 200, Date: testNow},
		{Description: "Consulta pendente", Value: 80, Date: testNow, Status: entity.RecordPending},
		{Description: "Aluguel", Value: 500, Date: testNow, Type: entity.RecordExpense},
		{Description: "Mês passado", Value: 1000, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := c.financial.Create(ctx, "nutri", in)
		require.NoError(t, err)
	}

	stats, err := c.dashboard.Stats(ctx, "nutri")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalPatients)
	assert.Equal(t, 3, stats.NewPatientsThisMonth)
	assert.Equal(t, 2, stats.TodayAppointments)
	assert.Len(t, stats.UpcomingAppointments, 3)
	assert.Equal(t, 200.0, stats.MonthlyRevenue)
	assert.Len(t, stats.RecentPatients, 5)

	_, err = c.dashboard.Stats(ctx, "")
	assert.ErrorIs(t, err, errors.ErrNoSession)
}
