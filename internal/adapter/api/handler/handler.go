package handler

import (
	"nutriflow/internal/usecase"
)

var (
	patientHandler     *PatientHandler
	appointmentHandler *AppointmentHandler
	dietPlanHandler    *DietPlanHandler
	financialHandler   *FinancialHandler
	chatHandler        *ChatHandler
	profileHandler     *ProfileHandler
	dashboardHandler   *DashboardHandler
)

func Setup(
	patientUseCase *usecase.PatientUseCase,
	appointmentUseCase *usecase.AppointmentUseCase,
	dietPlanUseCase *usecase.DietPlanUseCase,
	financialUseCase *usecase.FinancialUseCase,
	chatUseCase *usecase.ChatUseCase,
	profileUseCase *usecase.ProfileUseCase,
	dashboardUseCase *usecase.DashboardUseCase,
	maxUploadBytes int64,
) {
	patientHandler = NewPatientHandler(patientUseCase)
	appointmentHandler = NewAppointmentHandler(appointmentUseCase)
	dietPlanHandler = NewDietPlanHandler(dietPlanUseCase)
	financialHandler = NewFinancialHandler(financialUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	profileHandler = NewProfileHandler(profileUseCase, maxUploadBytes)
	dashboardHandler = NewDashboardHandler(dashboardUseCase)
}

func GetPatientHandler() *PatientHandler {
	return patientHandler
}

func GetAppointmentHandler() *AppointmentHandler {
	return appointmentHandler
}

func GetDietPlanHandler() *DietPlanHandler {
	return dietPlanHandler
}

func GetFinancialHandler() *FinancialHandler {
	return financialHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetProfileHandler() *ProfileHandler {
	return profileHandler
}

func GetDashboardHandler() *DashboardHandler {
	return dashboardHandler
}
