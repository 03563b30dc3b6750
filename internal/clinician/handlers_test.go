package clinician

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/models"
)

func TestFinalReportScenarioWritesNamedPDF(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	session := fixture.login(t, "drsmith")

	response := fixture.receiveReport(t, "1", "Jane Doe")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected receive-report 200, got %d: %s", response.StatusCode, readBody(t, response))
	}
	if body := readBody(t, response); !strings.Contains(body, "Report received successfully") {
		t.Fatalf("unexpected receive-report body %q", body)
	}

	response = fixture.postForm(t, "/final-report", zeroFeatureForm("1"), session)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected final-report 200, got %d: %s", response.StatusCode, readBody(t, response))
	}
	body := readBody(t, response)
	if !strings.Contains(body, "Jane_Doe_parkinsons_report.pdf") {
		t.Fatalf("expected report listing, got %q", body)
	}

	content, err := os.ReadFile(filepath.Join(fixture.reportsDir, "Jane_Doe_parkinsons_report.pdf"))
	if err != nil {
		t.Fatalf("expected report file on disk: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		t.Fatal("expected a pdf document")
	}

	var records []models.PatientReport
	if err := fixture.database.Find(&records).Error; err != nil {
		t.Fatalf("load report rows: %v", err)
	}
	if len(records) != 1 || records[0].DoctorID != 1 || records[0].PatientName != "Jane Doe" {
		t.Fatalf("unexpected report rows %+v", records)
	}
	if records[0].Prediction != models.PredictionPositive && records[0].Prediction != models.PredictionNegative {
		t.Fatalf("unexpected prediction %q", records[0].Prediction)
	}
}

func TestReceiveReportUnknownDoctorReturnsNotFound(t *testing.T) {
	fixture := newTestApp(t)

	response := fixture.receiveReport(t, "42", "Jane Doe")
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", response.StatusCode)
	}
	payload := map[string]string{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["error"] != "doctor not found" {
		t.Fatalf("unexpected error payload %v", payload)
	}

	var count int64
	if err := fixture.database.Model(&models.ClinicianNotification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no notification rows, got %d", count)
	}
}

func TestReceiveReportValidatesFields(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")

	tests := []struct {
		name   string
		fields map[string]string
		file   *filePart
	}{
		{
			name:   "missing file",
			fields: map[string]string{"doctor_id": "1", "patient_name": "Jane", "date": "2024-03-01"},
		},
		{
			name:   "bad date",
			fields: map[string]string{"doctor_id": "1", "patient_name": "Jane", "date": "yesterday"},
			file:   &filePart{field: "report", filename: "r.pdf", contentType: "application/pdf", content: []byte("x")},
		},
		{
			name:   "bad doctor id",
			fields: map[string]string{"doctor_id": "abc", "patient_name": "Jane", "date": "2024-03-01"},
			file:   &filePart{field: "report", filename: "r.pdf", contentType: "application/pdf", content: []byte("x")},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			response := fixture.postMultipart(t, "/receive-report", tc.fields, tc.file, "")
			if response.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d", response.StatusCode)
			}
		})
	}
}

func TestReceiveReportCreatesRowPerSubmission(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")

	for i := 0; i < 2; i++ {
		if response := fixture.receiveReport(t, "1", "Jane Doe"); response.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200, got %d", response.StatusCode)
		}
	}

	var count int64
	if err := fixture.database.Model(&models.ClinicianNotification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 notification rows, got %d", count)
	}
}

func TestSignupDuplicateUsernameShowsConflict(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")

	response := fixture.postMultipart(t, "/signup", map[string]string{
		"username": "drsmith",
		"password": "other",
		"name":     "Another",
		"email":    "another@example.com",
	}, nil, "")
	if response.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", response.StatusCode)
	}
	if body := readBody(t, response); !strings.Contains(body, "username or email already exists") {
		t.Fatalf("expected conflict message on the signup page, got %q", body)
	}
}

func TestSignupStoresProfilePicture(t *testing.T) {
	fixture := newTestApp(t)
	picture := []byte("\x89PNG\r\n\x1a\nrest-of-image")

	response := fixture.postMultipart(t, "/signup", map[string]string{
		"username": "drwho",
		"password": "pw123",
		"name":     "Who",
		"email":    "who@example.com",
	}, &filePart{field: "profile_picture", filename: "me.png", contentType: "image/png", content: picture}, "")
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected signup redirect, got %d", response.StatusCode)
	}
	session := fixture.login(t, "drwho")

	response = fixture.get(t, "/profile/picture", session)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected picture 200, got %d", response.StatusCode)
	}
	if body := readBody(t, response); body != string(picture) {
		t.Fatal("expected stored picture bytes")
	}
	if got := response.Header.Get(fiber.HeaderContentType); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
}

func TestLoginInvalidCredentialsRedirectsWithFlash(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")

	response := fixture.postForm(t, "/login", url.Values{"username": {"drsmith"}, "password": {"wrong"}}, "")
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", response.StatusCode, response.Header.Get("Location"))
	}
	if responseCookie(response, testCookies.SessionName()) != "" {
		t.Fatal("did not expect a session cookie")
	}
	flash := responseCookie(response, testCookies.FlashName())
	if flash == "" {
		t.Fatal("expected flash cookie")
	}

	request := httptest.NewRequest(http.MethodGet, "/login", nil)
	request.AddCookie(&http.Cookie{Name: testCookies.FlashName(), Value: flash})
	page := readBody(t, fixture.do(t, request))
	if !strings.Contains(page, "invalid credentials") || !strings.Contains(page, `value="drsmith"`) {
		t.Fatalf("expected flash error and username on login page, got %q", page)
	}
}

func TestLoginIsRateLimitedPerClient(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")

	for i := 0; i < loginAttemptLimit; i++ {
		fixture.postForm(t, "/login", url.Values{"username": {"drsmith"}, "password": {"wrong"}}, "")
	}

	response := fixture.postForm(t, "/login", url.Values{"username": {"drsmith"}, "password": {"pw123"}}, "")
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/login" {
		t.Fatalf("expected limited login to redirect back, got %d %q", response.StatusCode, response.Header.Get("Location"))
	}
	if responseCookie(response, testCookies.SessionName()) != "" {
		t.Fatal("did not expect a session while rate limited")
	}
}

func TestProtectedPagesRequireSession(t *testing.T) {
	fixture := newTestApp(t)

	response := fixture.get(t, "/dashboard", "")
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", response.StatusCode, response.Header.Get("Location"))
	}

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	request.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	response = fixture.do(t, request)
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for json clients, got %d", response.StatusCode)
	}

	response = fixture.get(t, "/dashboard", "not-a-token")
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected forged session to redirect, got %d", response.StatusCode)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	session := fixture.login(t, "drsmith")

	response := fixture.postForm(t, "/logout", url.Values{}, session)
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected logout redirect, got %d", response.StatusCode)
	}

	response = fixture.get(t, "/dashboard", session)
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/login" {
		t.Fatalf("expected revoked session to redirect, got %d", response.StatusCode)
	}
}

func TestDashboardListsOwnNotifications(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	fixture.signupDoctor(t, "drjones", "Jones")
	fixture.receiveReport(t, "1", "Jane Doe")
	fixture.receiveReport(t, "2", "John Roe")

	body := readBody(t, fixture.get(t, "/dashboard", fixture.login(t, "drsmith")))
	if !strings.Contains(body, "Jane Doe") || strings.Contains(body, "John Roe") {
		t.Fatalf("expected only own notifications, got %q", body)
	}
}

func TestDownloadReportIsOwnerScoped(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	fixture.signupDoctor(t, "drjones", "Jones")
	fixture.receiveReport(t, "1", "Jane Doe")

	response := fixture.get(t, "/download-report?notification_id=1", fixture.login(t, "drsmith"))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	if disposition := response.Header.Get(fiber.HeaderContentDisposition); !strings.Contains(disposition, "report_1.pdf") {
		t.Fatalf("unexpected content disposition %q", disposition)
	}
	if body := readBody(t, response); body != "%PDF-1.4 voice" {
		t.Fatalf("expected stored bytes, got %q", body)
	}

	response = fixture.get(t, "/download-report?notification_id=1", fixture.login(t, "drjones"))
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for another doctor, got %d", response.StatusCode)
	}
}

func TestDeleteNotificationRemovesRow(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	fixture.receiveReport(t, "1", "Jane Doe")
	fixture.receiveReport(t, "1", "Jane Doe")
	session := fixture.login(t, "drsmith")

	response := fixture.postForm(t, "/final-report", zeroFeatureForm("1"), session)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected final report to succeed, got %d", response.StatusCode)
	}

	response = fixture.postForm(t, "/delete-notification", url.Values{"notification_id": {"1"}}, session)
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %d", response.StatusCode)
	}

	var remaining []models.ClinicianNotification
	if err := fixture.database.Find(&remaining).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != 2 {
		t.Fatalf("expected only notification 2 to remain, got %+v", remaining)
	}
	if _, err := os.Stat(filepath.Join(fixture.reportsDir, "Jane_Doe_parkinsons_report.pdf")); err != nil {
		t.Fatalf("expected generated report file to survive the delete: %v", err)
	}
	var generated []models.PatientReport
	if err := fixture.database.Find(&generated).Error; err != nil {
		t.Fatalf("load patient reports: %v", err)
	}
	if len(generated) != 1 || generated[0].ReportFilename != "Jane_Doe_parkinsons_report.pdf" {
		t.Fatalf("expected the generated report row to survive the delete, got %+v", generated)
	}

	response = fixture.postForm(t, "/delete-notification", url.Values{"notification_id": {"1"}}, session)
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", response.StatusCode)
	}
}

func TestDetectTextRequiresPDFContentType(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	fixture.receiveReport(t, "1", "Jane Doe")
	session := fixture.login(t, "drsmith")

	response := fixture.postMultipart(t, "/detect-text", map[string]string{"notification_id": "1"},
		&filePart{field: "pdf_file", filename: "notes.txt", contentType: "text/plain", content: []byte("MDVP:Fo(Hz): 1")}, session)
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.StatusCode)
	}
}

func TestDetectTextUnreadablePDFFailsWithoutPartialResult(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	fixture.receiveReport(t, "1", "Jane Doe")
	session := fixture.login(t, "drsmith")

	response := fixture.postMultipart(t, "/detect-text", map[string]string{"notification_id": "1"},
		&filePart{field: "pdf_file", filename: "broken.pdf", contentType: "application/pdf", content: []byte("not a pdf")}, session)
	if response.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", response.StatusCode)
	}
	body := readBody(t, response)
	if !strings.Contains(body, "an error occurred while processing the PDF file") || strings.Contains(body, "mdvp_fo") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFinalReportRejectsMissingFeature(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	fixture.receiveReport(t, "1", "Jane Doe")
	session := fixture.login(t, "drsmith")

	form := zeroFeatureForm("1")
	form.Del("hnr")
	response := fixture.postForm(t, "/final-report", form, session)
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.StatusCode)
	}
	if body := readBody(t, response); !strings.Contains(body, "hnr") {
		t.Fatalf("expected the missing field to be named, got %q", body)
	}

	form = zeroFeatureForm("1")
	form.Set("ppe", "NaN")
	response = fixture.postForm(t, "/final-report", form, session)
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a non-finite value, got %d", response.StatusCode)
	}
	if body := readBody(t, response); !strings.Contains(body, "ppe") {
		t.Fatalf("expected the invalid field to be named, got %q", body)
	}

	response = fixture.postForm(t, "/final-report", zeroFeatureForm("99"), session)
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown notification, got %d", response.StatusCode)
	}
}

func TestSendToPatientRequiresExistingReport(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	session := fixture.login(t, "drsmith")

	response := fixture.postForm(t, "/send-to-patient", url.Values{
		"patient_username": {"jane"},
		"report":           {"Jane_Doe_parkinsons_report.pdf"},
	}, session)
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/final-report" {
		t.Fatalf("expected redirect to /final-report, got %d", response.StatusCode)
	}
	if len(fixture.patients.deliveries) != 0 {
		t.Fatal("expected no delivery attempt")
	}
}

func TestSendToPatientRecordsDelivery(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	session := fixture.login(t, "drsmith")
	fixture.receiveReport(t, "1", "Jane Doe")
	fixture.postForm(t, "/final-report", zeroFeatureForm("1"), session)

	form := url.Values{"patient_username": {"jane"}, "report": {"Jane_Doe_parkinsons_report.pdf"}}
	for i := 0; i < 2; i++ {
		response := fixture.postForm(t, "/send-to-patient", form, session)
		if response.StatusCode != fiber.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", response.StatusCode)
		}
	}

	if len(fixture.patients.deliveries) != 2 {
		t.Fatalf("expected two deliveries, got %d", len(fixture.patients.deliveries))
	}
	delivered := fixture.patients.deliveries[0]
	if delivered.PatientUsername != "jane" || delivered.Filename != "Jane_Doe_parkinsons_report.pdf" {
		t.Fatalf("unexpected delivery %+v", delivered)
	}
	onDisk, err := os.ReadFile(filepath.Join(fixture.reportsDir, delivered.Filename))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Equal(onDisk, delivered.Content) {
		t.Fatal("expected delivered bytes to equal the stored report")
	}

	var count int64
	if err := fixture.database.Model(&models.ReportDelivery{}).Count(&count).Error; err != nil {
		t.Fatalf("count deliveries: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two delivery rows, got %d", count)
	}
}

func TestSendToPatientUpstreamFailureLeavesNoDelivery(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")
	session := fixture.login(t, "drsmith")
	fixture.receiveReport(t, "1", "Jane Doe")
	fixture.postForm(t, "/final-report", zeroFeatureForm("1"), session)
	fixture.patients.err = errors.New("connection refused")

	response := fixture.postForm(t, "/send-to-patient", url.Values{
		"patient_username": {"jane"},
		"report":           {"Jane_Doe_parkinsons_report.pdf"},
	}, session)
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", response.StatusCode)
	}
	if responseCookie(response, testCookies.FlashName()) == "" {
		t.Fatal("expected failure flash")
	}

	var count int64
	if err := fixture.database.Model(&models.ReportDelivery{}).Count(&count).Error; err != nil {
		t.Fatalf("count deliveries: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no delivery rows, got %d", count)
	}
}

func TestDoctorsDirectoryOmitsSecrets(t *testing.T) {
	fixture := newTestApp(t)
	fixture.signupDoctor(t, "drsmith", "Smith")

	response := fixture.get(t, "/doctors", "")
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	body := readBody(t, response)
	if strings.Contains(strings.ToLower(body), "password") || strings.Contains(body, "profile_picture") {
		t.Fatalf("directory leaked secrets: %s", body)
	}

	var doctors []map[string]any
	if err := json.Unmarshal([]byte(body), &doctors); err != nil {
		t.Fatalf("decode directory: %v", err)
	}
	if len(doctors) != 1 || doctors[0]["username"] != "drsmith" || doctors[0]["position"] != "Neurologist" {
		t.Fatalf("unexpected directory %v", doctors)
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	fixture := newTestApp(t)

	response := fixture.get(t, "/no-such-page", "")
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", response.StatusCode)
	}
}

func TestIsPeerPath(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"peer": IsPeerPath(c)})
	})

	tests := map[string]bool{
		"/receive-report": true,
		"/doctors":        true,
		"/doctors/":       true,
		"/login":          false,
		"/final-report":   false,
	}
	for path, want := range tests {
		response, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		payload := map[string]bool{}
		if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if payload["peer"] != want {
			t.Fatalf("IsPeerPath(%q) = %v, want %v", path, payload["peer"], want)
		}
	}
}
