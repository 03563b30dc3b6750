package clinician

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

	"github.com/terraincognita07/vocalis/internal/classifier"
	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/peer"
	"github.com/terraincognita07/vocalis/internal/storage"
	"github.com/terraincognita07/vocalis/internal/web"
)

var testCookies = web.Cookies{Prefix: "clinician"}

type recordingPatients struct {
	mu         sync.Mutex
	deliveries []peer.Delivery
	err        error
}

func (patients *recordingPatients) DeliverReport(_ context.Context, delivery peer.Delivery) error {
	patients.mu.Lock()
	defer patients.mu.Unlock()
	if patients.err != nil {
		return patients.err
	}
	patients.deliveries = append(patients.deliveries, delivery)
	return nil
}

type testApp struct {
	app        *fiber.App
	database   *gorm.DB
	reportsDir string
	patients   *recordingPatients
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "clinician-test.db"), db.SchemaClinician)
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
	model, err := classifier.LoadLinearModel(filepath.Join("..", "..", "models", "parkinsons_linear.json"))
	if err != nil {
		t.Fatalf("load model: %v", err)
	}

	patients := &recordingPatients{}
	handler, err := Build(Options{
		Database: database,
		Store:    store,
		Model:    model,
		Patients: patients,
		Cookies:  testCookies,
		Secret:   []byte("clinician-test-secret-key-with-32-bytes"),
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, database: database, reportsDir: reportsDir, patients: patients}
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

type filePart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func (fixture *testApp) postMultipart(t *testing.T, path string, fields map[string]string, file *filePart, session string) *http.Response {
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

	request := httptest.NewRequest(http.MethodPost, path, body)
	request.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	withSession(request, session)
	return fixture.do(t, request)
}

func withSession(request *http.Request, session string) {
	if session != "" {
		request.AddCookie(&http.Cookie{Name: testCookies.SessionName(), Value: session})
	}
}

func (fixture *testApp) signupDoctor(t *testing.T, username string, name string) {
	t.Helper()
	response := fixture.postMultipart(t, "/signup", map[string]string{
		"username":      username,
		"password":      "pw123",
		"name":          name,
		"email":         username + "@example.com",
		"qualification": "MD",
		"position":      "Neurologist",
	}, nil, "")
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

func (fixture *testApp) receiveReport(t *testing.T, doctorID string, patientName string) *http.Response {
	t.Helper()
	return fixture.postMultipart(t, "/receive-report", map[string]string{
		"doctor_id":    doctorID,
		"patient_name": patientName,
		"date":         "2024-03-01T10:30:00.123456",
	}, &filePart{field: "report", filename: "voice.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4 voice")}, "")
}

func zeroFeatureForm(notificationID string) url.Values {
	values := url.Values{"notification_id": {notificationID}}
	for _, field := range []string{
		"mdvp_fo", "mdvp_fhi", "mdvp_flo", "mdvp_jitter", "mdvp_jitter_abs", "mdvp_rap",
		"mdvp_ppq", "jitter_ddp", "mdvp_shimmer", "mdvp_shimmer_db", "shimmer_apq3",
		"shimmer_apq5", "mdvp_apq", "shimmer_dda", "nhr", "hnr", "rpde", "dfa",
		"spread1", "spread2", "d2", "ppe",
	} {
		values.Set(field, "0")
	}
	return values
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
