package patient

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/storage"
	"github.com/terraincognita07/vocalis/internal/web"
)

const sessionIssuer = "vocalis-patient"

type Options struct {
	Database   *gorm.DB
	Store      storage.Store
	Clinicians services.ClinicianGateway
	Publisher  events.Publisher
	Cookies    web.Cookies
	Secret     []byte
	SessionTTL time.Duration
}

// Build wires repositories and services over one patient database.
func Build(options Options) (*Handler, error) {
	if options.Database == nil || options.Store == nil || options.Clinicians == nil {
		return nil, errors.New("patient build requires database, store and clinician client")
	}
	if options.Publisher == nil {
		options.Publisher = events.Nop{}
	}
	if options.SessionTTL <= 0 {
		options.SessionTTL = services.DefaultSessionTTL
	}

	repos := db.NewPatientRepositories(options.Database)
	sessionStore := services.NewDatabaseSessionStore(repos.Sessions, options.SessionTTL)

	return NewHandler(Services{
		Accounts: services.NewPatientAccountService(repos.Patients),
		Sessions: services.NewSessionTokens(sessionStore, options.Secret, sessionIssuer, options.SessionTTL),
		Receipt: services.NewReceiptService(
			repos.Patients,
			repos.FinalReports,
			repos.Notifications,
			options.Store,
			options.Publisher,
		),
		Directory: services.NewDirectoryService(options.Clinicians),
	}, options.Cookies)
}
