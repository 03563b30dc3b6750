package db

import "gorm.io/gorm"

type ClinicianRepositories struct {
	Doctors        *DoctorRepository
	Notifications  *ClinicianNotificationRepository
	PatientReports *PatientReportRepository
	Deliveries     *ReportDeliveryRepository
	Sessions       *SessionRepository
}

func NewClinicianRepositories(database *gorm.DB) *ClinicianRepositories {
	return &ClinicianRepositories{
		Doctors:        NewDoctorRepository(database),
		Notifications:  NewClinicianNotificationRepository(database),
		PatientReports: NewPatientReportRepository(database),
		Deliveries:     NewReportDeliveryRepository(database),
		Sessions:       NewSessionRepository(database),
	}
}

type PatientRepositories struct {
	Patients      *PatientRepository
	Notifications *PatientNotificationRepository
	FinalReports  *FinalReportRepository
	Sessions      *SessionRepository
}

func NewPatientRepositories(database *gorm.DB) *PatientRepositories {
	return &PatientRepositories{
		Patients:      NewPatientRepository(database),
		Notifications: NewPatientNotificationRepository(database),
		FinalReports:  NewFinalReportRepository(database),
		Sessions:      NewSessionRepository(database),
	}
}
