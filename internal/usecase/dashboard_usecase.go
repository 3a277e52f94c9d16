package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/pkg/errors"
)

const recentPatientsLimit = 5

type DashboardStats struct {
	TotalPatients        int                   `json:"totalPatients"`
	NewPatientsThisMonth int                   `json:"newPatientsThisMonth"`
	TodayAppointments    int                   `json:"todayAppointments"`
	MonthlyRevenue       float64               `json:"monthlyRevenue"`
	UpcomingAppointments []*entity.Appointment `json:"upcomingAppointments"`
	RecentPatients       []*entity.Patient     `json:"recentPatients"`
}

type DashboardUseCase struct {
	patientRepo  repository.PatientRepository
	appointments *AppointmentUseCase
	financial    *FinancialUseCase
	now          Clock
}

func NewDashboardUseCase(patientRepo repository.PatientRepository, appointments *AppointmentUseCase, financial *FinancialUseCase) *DashboardUseCase {
	return &DashboardUseCase{
		patientRepo:  patientRepo,
		appointments: appointments,
		financial:    financial,
		now:          time.Now,
	}
}

// Stats gathers the dashboard figures. The reads are independent and run
// concurrently; the first failure cancels the rest.
func (uc *DashboardUseCase) Stats(ctx context.Context, uid string) (*DashboardStats, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}

	stats := &DashboardStats{}
	monthStart, _ := MonthBounds(uc.now())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patients, err := uc.patientRepo.List(gctx, uid)
		if err != nil {
			return err
		}
		stats.TotalPatients = len(patients)
		return nil
	})
	g.Go(func() error {
		count, err := uc.patientRepo.CountCreatedSince(gctx, uid, monthStart.UTC())
		if err != nil {
			return err
		}
		stats.NewPatientsThisMonth = count
		return nil
	})
	g.Go(func() error {
		upcoming, err := uc.appointments.Upcoming(gctx, uid)
		if err != nil {
			return err
		}
		stats.UpcomingAppointments = upcoming
		stats.TodayAppointments = countOnDay(upcoming, uc.now())
		return nil
	})
	g.Go(func() error {
		recent, err := uc.patientRepo.ListRecent(gctx, uid, recentPatientsLimit)
		if err != nil {
			return err
		}
		stats.RecentPatients = recent
		return nil
	})
	g.Go(func() error {
		revenue, err := uc.financial.MonthlyRevenue(gctx, uid)
		if err != nil {
			return err
		}
		stats.MonthlyRevenue = revenue
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
