package patient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/peer"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/storage"
	"github.com/terraincognita07/vocalis/internal/web"
)

var testCookies = web.Cookies{Prefix: "patient"}

type stubClinicians struct {
	mu          sync.Mutex
	doctors     []peer.Doctor
	listErr     error
	submitErr   error
	submissions []peer.Submission
}

func (clinicians *stubClinicians) ListDoctors(context.Context) ([]peer.Doctor, error) {
	if clinicians.listErr != nil {
		return nil, clinicians.listErr
	}
	return clinicians.doctors, nil
}

func (clinicians *stubClinicians) SubmitReport(_ context.Context, submission peer.Submission) error {
	clinicians.mu.Lock()
	defer clinicians.mu.Unlock()
	if clinicians.submitErr != nil {
		return clinicians.submitErr
	}
	clinicians.submissions = append(clinicians.submissions, submission)
	return nil
}

type testApp struct {
	app        *fiber.App
	database   *gorm.DB
	reportsDir string
}

func newTestApp(t *testing.T, clinicians services.ClinicianGateway) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "patient-test.db"), db.SchemaPatient)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(database)
	})

	reportsDir := t.TempDir()
	store, err := storage.NewDiskStore(reportsDir)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}

	handler, err := Build(Options{
		Database:   database,
		Store:      store,
		Clinicians: clinicians,
		Cookies:    testCookies,
		Secret:     []byte("patient-test-secret-key-with-32-bytes!"),
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, database: database, reportsDir: reportsDir}
}

func (fixture *testApp) do(t *testing.T, request *http.Request) *http.Response {
	t.Helper()
	response, err := fixture.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	return response
}

func (fixture *testApp) postForm(t *testing.T, path string, values url.Values, session string) *http.Response {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	withSession(request, session)
	return fixture.do(t, request)
}

func (fixture *testApp) get(t *testing.T, path string, session string) *http.Response {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	withSession(request, session)
	return fixture.do(t, request)
}

func (fixture *testApp) postMultipart(t *testing.T, path string, fields map[string]string, file *filePart, session string) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, file)
	request := httptest.NewRequest(http.MethodPost, path, body)
	request.Header.Set(fiber.HeaderContentType, contentType)
	withSession(request, session)
	return fixture.do(t, request)
}

type filePart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *filePart) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func withSession(request *http.Request, session string) {
	if session != "" {
		request.AddCookie(&http.Cookie{Name: testCookies.SessionName(), Value: session})
	}
}

func (fixture *testApp) signupPatient(t *testing.T, username string) {
	t.Helper()
	response := fixture.postForm(t, "/signup", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"pw123"},
	}, "")
	if response.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected signup redirect, got %d: %s", response.StatusCode, readBody(t, response))
	}
}

func (fixture *testApp) login(t *testing.T, username string) string {
	t.Helper()
	response := fixture.postForm(t, "/login", url.Values{"username": {username}, "password": {"pw123"}}, "")
	if response.StatusCode != fiber.StatusSeeOther || response.Header.Get("Location") != "/dashboard" {
		t.Fatalf("expected login redirect to /dashboard, got %d %q", response.StatusCode, response.Header.Get("Location"))
	}
	session := responseCookie(response, testCookies.SessionName())
	if session == "" {
		t.Fatal("expected session cookie after login")
	}
	return session
}

func (fixture *testApp) receiveReport(t *testing.T, username string, filename string, content []byte) *http.Response {
	t.Helper()
	return fixture.postMultipart(t, "/patient/receive_report", map[string]string{
		"patient_username": username,
		"report_filename":  filename,
	}, &filePart{field: "report", filename: "upload.pdf", contentType: "application/pdf", content: content}, "")
}

func (fixture *testApp) count(t *testing.T, model any) int64 {
	t.Helper()
	var total int64
	if err := fixture.database.Model(model).Count(&total).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return total
}

func responseCookie(response *http.Response, name string) string {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(body)
}
