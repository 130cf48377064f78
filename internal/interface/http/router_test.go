package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/label-insight/internal/domain/analysis"
	"github.com/yanqian/label-insight/internal/domain/auth"
	"github.com/yanqian/label-insight/internal/domain/history"
	"github.com/yanqian/label-insight/internal/domain/profile"
	"github.com/yanqian/label-insight/internal/infra/config"
	"github.com/yanqian/label-insight/internal/infra/historystore"
	"github.com/yanqian/label-insight/internal/infra/profilerepo"
	"github.com/yanqian/label-insight/internal/infra/uploads"
	"github.com/yanqian/label-insight/internal/infra/userrepo"
	"github.com/yanqian/label-insight/pkg/metrics"
)

const labelText = "CRUNCHY BITES\nINGREDIENTS: sugar, salt, palm oil"

const modelReply = "```json\n" + `{
  "extraction": {"product_name": "Crunchy Bites", "ingredients": ["sugar", "salt", "palm oil"], "product_type": "food"},
  "analysis": {
    "overall_safety_score": 42,
    "traffic_light": "Red",
    "summary": "Sugary snack high in saturated fat.",
    "harmful_ingredients": [{"ingredient": "palm oil", "reason": "saturated fat", "description": "tropical oil", "identification": "palmitate"}],
    "recommendations": "Choose unsalted nuts.",
    "precautionary_tips": ["Limit portion size"]
  }
}` + "\n```"

func TestRouter_UploadImageEndToEnd(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.upload(t, token, "label.png", []byte("fake png bytes"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	extraction := got["extraction"].(map[string]any)
	require.Equal(t, []any{"sugar", "salt", "palm oil"}, extraction["ingredients"])
	imageURL, ok := got["image_url"].(string)
	require.True(t, ok)
	require.Contains(t, imageURL, "/static/uploads/")
	require.True(t, strings.HasSuffix(imageURL, "_label.png"))

	require.Len(t, env.preprocessor.paths, 1)
	require.Equal(t, env.uploadsDir, filepath.Dir(env.preprocessor.paths[0]))
	_, err := os.Stat(env.preprocessor.paths[0])
	require.NoError(t, err)
	require.Equal(t, 1, env.extractor.calls)
	require.Contains(t, env.generator.prompts[0], "INGREDIENTS: sugar, salt, palm oil")
}

func TestRouter_UploadImageRejectsDisallowedExtension(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.upload(t, token, "label.bmp", []byte("BM"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Allowed file types are png, jpg, jpeg, gif, webp", decodeErrorMessage(t, rec.Body.Bytes()))
	require.Empty(t, env.preprocessor.paths)
	require.Equal(t, 0, env.extractor.calls)
	require.Empty(t, env.generator.prompts)

	entries, err := os.ReadDir(env.uploadsDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRouter_UploadImageMissingFile(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("note", "no photo"))
	require.NoError(t, form.Close())
	rec := env.do(t, http.MethodPost, "/api/v1/upload_image", token, form.FormDataContentType(), body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No file part in the request", decodeErrorMessage(t, rec.Body.Bytes()))

	rec = env.upload(t, token, "", []byte("data"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No file selected for uploading", decodeErrorMessage(t, rec.Body.Bytes()))
}

func TestRouter_UploadImageTooLarge(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.upload(t, token, "label.png", bytes.Repeat([]byte{0xff}, 4096))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Equal(t, "File is too large", decodeErrorMessage(t, rec.Body.Bytes()))
	require.Empty(t, env.preprocessor.paths)
}

func TestRouter_UnconfiguredClientOnBothRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.signIn(t, "eater@example.com")

	rec := env.upload(t, token, "label.jpg", []byte("jpeg"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Gemini client not initialized. Check API key."}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/quick_analysis", token, "application/json", strings.NewReader(`{"text":"INGREDIENTS: water"}`))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Gemini client not initialized. Check API key."}`, rec.Body.String())
}

func TestRouter_QuickAnalysis(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/quick_analysis", token, "application/json", strings.NewReader(`{"text":"INGREDIENTS: sugar, salt, palm oil"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotContains(t, got, "image_url")
	require.Equal(t, 0, env.extractor.calls)
	require.Len(t, env.generator.prompts, 1)
}

func TestRouter_QuickAnalysisRequiresText(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	for _, body := range []string{``, `not json`, `{}`, `{"text":null}`, `{"text":5}`, `{"body":"sugar"}`} {
		rec := env.do(t, http.MethodPost, "/api/v1/quick_analysis", token, "application/json", strings.NewReader(body))
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		require.Equal(t, "No text provided for analysis", decodeErrorMessage(t, rec.Body.Bytes()), body)
	}
	require.Empty(t, env.generator.prompts)
}

func TestRouter_QuickAnalysisEmptyTextStillReachesModel(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/quick_analysis", token, "application/json", strings.NewReader(`{"text":""}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.generator.prompts, 1)
}

func TestRouter_ProfileRoundTripPersonalizesPrompt(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.do(t, http.MethodGet, "/api/v1/profile", token, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "profile not found", decodeErrorMessage(t, rec.Body.Bytes()))

	rec = env.do(t, http.MethodPut, "/api/v1/profile", token, "application/json",
		strings.NewReader(`{"name":"Sam","age":34,"gender":"Female","height":168,"weight":61.5,"allergies":"peanuts"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/profile", token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.Equal(t, "Sam", saved["name"])
	require.Equal(t, "peanuts", saved["allergies"])

	rec = env.do(t, http.MethodPost, "/api/v1/quick_analysis", token, "application/json", strings.NewReader(`{"text":"INGREDIENTS: peanuts"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, env.generator.prompts[0], "- Allergies: peanuts")
}

func TestRouter_ProfileValidation(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.do(t, http.MethodPut, "/api/v1/profile", token, "application/json", strings.NewReader(`{"name":"","age":34}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HistoryListsNewestFirst(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})
	token := env.signIn(t, "eater@example.com")

	rec := env.do(t, http.MethodGet, "/api/v1/history", token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[]}`, rec.Body.String())

	require.Equal(t, http.StatusOK, env.upload(t, token, "label.webp", []byte("webp")).Code)
	rec = env.do(t, http.MethodPost, "/api/v1/quick_analysis", token, "application/json", strings.NewReader(`{"text":"x"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/history", token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Items []history.Entry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Items, 2)
	require.Equal(t, analysis.SourceText, got.Items[0].Source)
	require.Equal(t, analysis.SourceImage, got.Items[1].Source)
	require.NotEmpty(t, got.Items[1].ImageURL)
	require.Equal(t, "Crunchy Bites", got.Items[1].ProductName)
	require.NotNil(t, got.Items[1].Score)
	require.Equal(t, 42, *got.Items[1].Score)
}

func TestRouter_AuthFlow(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", "application/json",
		strings.NewReader(`{"email":"a@example.com","password":"secret1","confirmPassword":"secret1"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", "", "application/json",
		strings.NewReader(`{"email":"a@example.com","password":"secret1","confirmPassword":"secret1"}`))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", "application/json",
		strings.NewReader(`{"email":"a@example.com","password":"wrong-pass"}`))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", "application/json",
		strings.NewReader(`{"email":"a@example.com","password":"secret1"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	require.NotEmpty(t, login.RefreshToken)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", login.Token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me auth.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, "a@example.com", me.Email)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", "application/json",
		strings.NewReader(`{"refreshToken":"`+login.RefreshToken+`"}`))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})

	for _, path := range []string{"/api/v1/history", "/api/v1/profile", "/api/v1/auth/me"} {
		rec := env.do(t, http.MethodGet, path, "", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := env.do(t, http.MethodGet, "/api/v1/history", "not-a-token", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, &stubGenerator{reply: modelReply})

	rec := env.do(t, http.MethodGet, "/health", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","ocr":"eng","llm":"Gemini","llmConfigured":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/metrics", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}

type testEnv struct {
	server       *http.Server
	uploadsDir   string
	preprocessor *stubPreprocessor
	extractor    *stubExtractor
	generator    *stubGenerator
}

// newTestEnv builds the full router over in-memory backends. A nil generator
// leaves the model client unconfigured.
func newTestEnv(t *testing.T, gen *stubGenerator) *testEnv {
	t.Helper()
	logger := newTestLogger()

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			MaxUploadBytes: 2048,
		},
		Uploads: config.UploadsConfig{
			Dir:        filepath.Join(t.TempDir(), "uploads"),
			PublicPath: "/static/uploads",
		},
	}

	store, err := uploads.NewLocalStore(uploads.Config{Dir: cfg.Uploads.Dir, PublicPath: cfg.Uploads.PublicPath}, nil, logger)
	require.NoError(t, err)

	env := &testEnv{
		uploadsDir:   cfg.Uploads.Dir,
		preprocessor: &stubPreprocessor{},
		extractor:    &stubExtractor{text: labelText},
	}
	client := analysis.NewUnconfiguredClient(analysis.DefaultProvider)
	if gen != nil {
		env.generator = gen
		client = analysis.NewClient(analysis.DefaultProvider, gen)
	} else {
		env.generator = &stubGenerator{}
	}

	recorder := metrics.NewRecorder()
	authSvc := auth.NewService(auth.Config{Secret: "test-secret", TokenTTL: time.Hour, RefreshTokenTTL: 24 * time.Hour}, userrepo.NewMemoryRepository(), logger)
	handler := NewHandler(Services{
		Auth:     authSvc,
		Analysis: analysis.NewService(env.preprocessor, env.extractor, client, nil, recorder, logger),
		Profiles: profile.NewService(profilerepo.NewMemoryRepository(), logger),
		History:  history.NewService(history.Config{Limit: 20}, historystore.NewMemoryStore(time.Hour), logger),
		Uploads:  store,
	}, HealthInfo{OCRLanguage: "eng", LLMProvider: client.Provider(), LLMConfigured: client.Configured()}, logger)

	env.server = NewRouter(cfg, handler, recorder)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, token, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, form.Close())
	return e.do(t, http.MethodPost, "/api/v1/upload_image", token, form.FormDataContentType(), body)
}

func (e *testEnv) signIn(t *testing.T, email string) string {
	t.Helper()
	payload := `{"email":"` + email + `","password":"secret1","confirmPassword":"secret1"}`
	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", "application/json", strings.NewReader(payload))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", "application/json",
		strings.NewReader(`{"email":"`+email+`","password":"secret1"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	return login.Token
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeErrorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body["error"]
}

type stubPreprocessor struct {
	paths []string
}

func (s *stubPreprocessor) Preprocess(_ context.Context, path string) *image.Gray {
	s.paths = append(s.paths, path)
	return image.NewGray(image.Rect(0, 0, 8, 8))
}

type stubExtractor struct {
	text  string
	calls int
}

func (s *stubExtractor) Extract(context.Context, *image.Gray) (string, error) {
	s.calls++
	return s.text, nil
}

type stubGenerator struct {
	reply   string
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, nil
}
