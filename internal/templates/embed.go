package templates

import "embed"

// Files stores the page templates of both apps embedded into the binary.
//
//go:embed clinician/*.html patient/*.html
var Files embed.FS

const (
	ClinicianDir = "clinician"
	PatientDir   = "patient"
)

var ClinicianPages = []string{
	"home",
	"login",
	"signup",
	"dashboard",
	"profile",
	"analyze_report",
	"final_report",
	"not_found",
}

var PatientPages = []string{
	"home",
	"login",
	"signup",
	"dashboard",
	"profile",
	"send_report",
	"not_found",
}
