package clinician

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/terraincognita07/vocalis/internal/classifier"
	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/extract"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/storage"
	"github.com/terraincognita07/vocalis/internal/web"
)

const sessionIssuer = "vocalis-clinician"

// Options are the collaborators a clinician server is assembled from.
type Options struct {
	Database   *gorm.DB
	Store      storage.Store
	Model      classifier.Classifier
	Extractor  extract.TextExtractor
	Patients   services.PatientDeliverer
	Publisher  events.Publisher
	Cookies    web.Cookies
	Secret     []byte
	SessionTTL time.Duration
}

// Build wires repositories and services over one clinician database.
func Build(options Options) (*Handler, error) {
	if options.Database == nil || options.Store == nil || options.Model == nil || options.Patients == nil {
		return nil, errors.New("clinician build requires database, store, model and patient client")
	}
	if options.Extractor == nil {
		options.Extractor = extract.NewPDFExtractor()
	}
	if options.Publisher == nil {
		options.Publisher = events.Nop{}
	}
	if options.SessionTTL <= 0 {
		options.SessionTTL = services.DefaultSessionTTL
	}

	repos := db.NewClinicianRepositories(options.Database)
	sessionStore := services.NewDatabaseSessionStore(repos.Sessions, options.SessionTTL)
	intake := services.NewIntakeService(repos.Doctors, repos.Notifications, options.Publisher)

	return NewHandler(Services{
		Accounts:   services.NewDoctorAccountService(repos.Doctors),
		Sessions:   services.NewSessionTokens(sessionStore, options.Secret, sessionIssuer, options.SessionTTL),
		Intake:     intake,
		Extraction: services.NewExtractionService(options.Extractor, intake),
		Finalize: services.NewFinalizeService(
			repos.Doctors,
			intake,
			repos.PatientReports,
			options.Store,
			options.Model,
			options.Publisher,
		),
		Handoff: services.NewHandoffService(
			repos.PatientReports,
			repos.Deliveries,
			options.Store,
			options.Patients,
			options.Publisher,
		),
	}, options.Cookies)
}
