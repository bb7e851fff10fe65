package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"learning_server/core/domain"
	"learning_server/core/service/assessment"
	"learning_server/infra/middleware"
	"learning_server/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const testSecret = "handler-secret"

// fakeContent records the arguments of the last call.
type fakeContent struct {
	topic      string
	style      domain.LearningStyle
	text       string
	assessment domain.AssessmentScores
}

func (f *fakeContent) GetPersonalizedContent(_ context.Context, topic string, style domain.LearningStyle, documentText string) ([]domain.RecommendationItem, *domain.Outcome) {
	f.topic, f.style, f.text = topic, style, documentText
	o := domain.NewOutcome()
	o.Finish()
	return []domain.RecommendationItem{{Title: "t", Description: "d", Type: style, URL: "https://example.com", Source: "s"}}, o
}

func (f *fakeContent) GenerateDocumentSummary(_ context.Context, documentText string, style domain.LearningStyle) (*domain.SummaryDocument, *domain.Outcome) {
	f.text, f.style = documentText, style
	o := domain.NewOutcome()
	o.Finish()
	return &domain.SummaryDocument{KeyPoints: []string{"k"}}, o
}

func (f *fakeContent) AnalyzeContent(_ context.Context, documentText string, a domain.AssessmentScores) (*domain.ContentAnalysis, *domain.Outcome) {
	f.text, f.assessment = documentText, a
	o := domain.NewOutcome()
	o.Finish()
	return &domain.ContentAnalysis{DifficultyLevel: domain.DifficultyIntermediate}, o
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(_ context.Context, filename, contentType string, data []byte) (string, error) {
	if strings.HasSuffix(filename, ".pdf") {
		return "", &domain.ExtractionError{ContentType: "pdf", Err: errors.New("malformed pdf")}
	}
	return string(data), nil
}

type memoryRepo struct {
	mu      sync.Mutex
	records []*domain.AssessmentRecord
}

func (r *memoryRepo) Save(_ context.Context, rec *domain.AssessmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = int64(len(r.records) + 1)
	rec.CreatedAt = time.Now()
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRepo) Latest(_ context.Context, userID uuid.UUID) (*domain.AssessmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			return r.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func newTestApp(content *fakeContent, repo *memoryRepo) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())

	api := app.Group("/api/v1", middleware.OptionalJWTAuth(testSecret))
	NewContentHandler(content, fakeExtractor{}, 1024).Register(api)
	NewAssessmentHandler(assessment.NewService(repo, zerolog.Nop())).Register(api, middleware.JWTAuth(testSecret))
	NewHealthHandler(metrics.NewPipeline(10)).Register(app)
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, path, contentType string, body io.Reader, token string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
	}
	return resp.StatusCode, env
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("file: %v", err)
		}
		fw.Write([]byte(content))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"ok", `{"topic":"Photosynthesis","style":"Visual"}`, 200, ""},
		{"reading alias", `{"topic":"Algebra","style":"reading/writing"}`, 200, ""},
		{"missing topic", `{"style":"visual"}`, 400, "MISSING_FIELD"},
		{"missing style", `{"topic":"x"}`, 400, "MISSING_FIELD"},
		{"unknown style", `{"topic":"x","style":"telepathic"}`, 400, "INVALID_INPUT"},
		{"bad json", `{`, 400, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := &fakeContent{}
			app := newTestApp(content, &memoryRepo{})

			status, env := do(t, app, "POST", "/api/v1/recommendations", "application/json", strings.NewReader(tt.body), "")
			if status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
			if tt.code != "" && env.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, env.Error.Code)
			}
			if tt.status == 200 {
				if !content.style.IsKnown() {
					t.Errorf("style not normalized: %q", content.style)
				}
				var outcome domain.Outcome
				if err := json.Unmarshal(env.Meta, &outcome); err != nil || outcome.Stage != domain.StageDone {
					t.Errorf("expected outcome in meta, got %s", env.Meta)
				}
			}
		})
	}
}

func TestSummaryUpload(t *testing.T) {
	content := &fakeContent{}
	app := newTestApp(content, &memoryRepo{})

	body, ct := multipartBody(t, map[string]string{"style": "auditory"}, "notes.txt", "Cells divide.")
	status, _ := do(t, app, "POST", "/api/v1/summaries", ct, body, "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if content.text != "Cells divide." || content.style != domain.StyleAuditory {
		t.Errorf("unexpected call: %+v", content)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		content  string
		status   int
		code     string
	}{
		{"extraction failure", nil, "broken.pdf", "%PDF", 422, "EXTRACTION_FAILED"},
		{"missing file", map[string]string{"style": "visual"}, "", "", 400, "MISSING_FIELD"},
		{"too large", nil, "big.txt", strings.Repeat("a", 2048), 413, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := &fakeContent{}
			app := newTestApp(content, &memoryRepo{})

			body, ct := multipartBody(t, tt.fields, tt.filename, tt.content)
			status, env := do(t, app, "POST", "/api/v1/summaries", ct, body, "")
			if status != tt.status || env.Error.Code != tt.code {
				t.Fatalf("expected %d %s, got %d %s", tt.status, tt.code, status, env.Error.Code)
			}
			if content.text != "" {
				t.Error("pipeline must not run when the upload is rejected")
			}
		})
	}
}

func TestAnalysis(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		content := &fakeContent{}
		app := newTestApp(content, &memoryRepo{})
		body := `{"documentText":"Some text.","assessment":{"cognitiveScore":80,"emotionalScore":60,"physicalScore":40}}`

		status, _ := do(t, app, "POST", "/api/v1/analyses", "application/json", strings.NewReader(body), "")
		if status != 200 {
			t.Fatalf("expected 200, got %d", status)
		}
		if content.assessment.CognitiveScore != 80 || content.assessment.PhysicalScore != 40 {
			t.Errorf("unexpected assessment %+v", content.assessment)
		}
	})

	t.Run("multipart", func(t *testing.T) {
		content := &fakeContent{}
		app := newTestApp(content, &memoryRepo{})
		fields := map[string]string{"assessmentResults": `{"cognitiveScore":10,"emotionalScore":20,"physicalScore":30}`}
		body, ct := multipartBody(t, fields, "notes.md", "# Notes")

		status, _ := do(t, app, "POST", "/api/v1/analyses", ct, body, "")
		if status != 200 {
			t.Fatalf("expected 200, got %d", status)
		}
		if content.assessment.EmotionalScore != 20 || content.text != "# Notes" {
			t.Errorf("unexpected call %+v", content)
		}
	})

	t.Run("score out of range", func(t *testing.T) {
		app := newTestApp(&fakeContent{}, &memoryRepo{})
		body := `{"documentText":"x","assessment":{"cognitiveScore":120}}`

		status, env := do(t, app, "POST", "/api/v1/analyses", "application/json", strings.NewReader(body), "")
		if status != 400 || env.Error.Code != "INVALID_INPUT" {
			t.Errorf("expected 400 INVALID_INPUT, got %d %s", status, env.Error.Code)
		}
	})
}

func token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestAssessmentFlow(t *testing.T) {
	repo := &memoryRepo{}
	app := newTestApp(&fakeContent{}, repo)
	userID := uuid.New()
	tok := token(t, userID)

	status, env := do(t, app, "GET", "/api/v1/assessments/questions?count=3", "", nil, "")
	if status != 200 {
		t.Fatalf("questions: expected 200, got %d", status)
	}
	var questions []domain.StyleQuestion
	if err := json.Unmarshal(env.Data, &questions); err != nil || len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %s", env.Data)
	}

	status, _ = do(t, app, "GET", "/api/v1/assessments/latest", "", nil, tok)
	if status != 404 {
		t.Fatalf("latest before saving: expected 404, got %d", status)
	}

	answers := `{"answers":[{"questionId":"q1","optionId":"a"},{"questionId":"q2","optionId":"a"}]}`
	status, env = do(t, app, "POST", "/api/v1/assessments/learning-style", "application/json", strings.NewReader(answers), tok)
	if status != 200 {
		t.Fatalf("score: expected 200, got %d", status)
	}
	var scored struct {
		DominantType domain.LearningStyle     `json:"dominantType"`
		Saved        *domain.AssessmentRecord `json:"saved"`
	}
	if err := json.Unmarshal(env.Data, &scored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if scored.Saved == nil || scored.Saved.UserID != userID {
		t.Fatalf("expected result saved for signed-in user, got %s", env.Data)
	}

	status, env = do(t, app, "GET", "/api/v1/assessments/latest", "", nil, tok)
	if status != 200 {
		t.Fatalf("latest: expected 200, got %d", status)
	}
	var latest domain.AssessmentRecord
	if err := json.Unmarshal(env.Data, &latest); err != nil || latest.DominantType != string(scored.DominantType) {
		t.Errorf("unexpected latest %s", env.Data)
	}

	status, _ = do(t, app, "GET", "/api/v1/assessments/latest", "", nil, "")
	if status != 401 {
		t.Errorf("latest without token: expected 401, got %d", status)
	}
}

func TestAnonymousLearningStyleIsNotSaved(t *testing.T) {
	repo := &memoryRepo{}
	app := newTestApp(&fakeContent{}, repo)

	answers := `{"answers":[{"questionId":"q1","optionId":"b"}]}`
	status, _ := do(t, app, "POST", "/api/v1/assessments/learning-style", "application/json", strings.NewReader(answers), "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(repo.records) != 0 {
		t.Error("anonymous results must not be stored")
	}
}

func TestWellness(t *testing.T) {
	app := newTestApp(&fakeContent{}, &memoryRepo{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"answers":{"1":5,"2":4,"3":3,"4":3,"5":1,"6":1}}`, 200},
		{"rating out of range", `{"answers":{"1":9}}`, 400},
		{"non numeric id", `{"answers":{"one":3}}`, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, "POST", "/api/v1/assessments/wellness", "application/json", strings.NewReader(tt.body), "")
			if status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
			if tt.status == 200 {
				var scores domain.AssessmentScores
				if err := json.Unmarshal(env.Data, &scores); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if scores.CognitiveScore != 90 || scores.EmotionalScore != 60 || scores.PhysicalScore != 20 {
					t.Errorf("unexpected scores %+v", scores)
				}
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	pipeline := metrics.NewPipeline(10)
	pipeline.Inc("recommendations.runs")

	app := fiber.New()
	NewHealthHandler(pipeline).
		WithCheck("postgres", nil).
		WithCheck("redis", PingFunc(func(context.Context) error { return errors.New("connection refused") })).
		Register(app)

	resp, _ := app.Test(httptest.NewRequest("GET", "/health", nil))
	if resp.StatusCode != 200 {
		t.Errorf("health: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/ready", nil))
	if resp.StatusCode != 503 {
		t.Errorf("ready: expected 503, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/metrics/pipeline", nil))
	var snap struct {
		Counters map[string]int64 `json:"counters"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Counters["recommendations.runs"] != 1 {
		t.Errorf("unexpected counters %v", snap.Counters)
	}
}
