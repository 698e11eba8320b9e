package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/fridgechef/internal/chat"
	"github.com/vbonduro/fridgechef/internal/db"
	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/service"
	"github.com/vbonduro/fridgechef/internal/session"
	"github.com/vbonduro/fridgechef/internal/store"
	"github.com/vbonduro/fridgechef/internal/vision"
	"github.com/vbonduro/fridgechef/internal/web"
)

// jpegWith returns 512 bytes with the JPEG magic bytes header followed by a
// marker byte so different test images hash differently.
func jpegWith(marker byte) []byte {
	b := make([]byte, 512)
	b[0] = 0xFF
	b[1] = 0xD8
	b[2] = 0xFF
	b[3] = 0xE0
	b[4] = marker
	return b
}

// recordingVision answers by image marker and counts calls.
type recordingVision struct {
	mu       sync.Mutex
	calls    int
	contexts []string
	images   [][]byte
	results  map[byte][]string
}

func (r *recordingVision) Extract(_ context.Context, img domain.ImageRecord) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.contexts = append(r.contexts, img.Context)
	r.images = append(r.images, img.Data)
	names, ok := r.results[img.Data[4]]
	if !ok {
		return nil, &domain.ExtractionError{Err: &domain.TransportError{StatusCode: http.StatusBadGateway}}
	}
	return names, nil
}

func (r *recordingVision) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// scriptedModel returns reply, or err when set, and records every request.
type scriptedModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []chat.Request
}

func (m *scriptedModel) Complete(_ context.Context, req chat.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.reply, m.err
}

// newTestServer wires the real service stack, with the extraction cache on
// in-memory SQLite, around the provided model stubs.
func newTestServer(t *testing.T, vis vision.Extractor, model chat.Model) *httptest.Server {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extractor := vision.NewCachingExtractor(vis, store.NewExtractionStore(database), logger)
	orchestrator, err := service.NewOrchestrator(model, logger)
	require.NoError(t, err)

	svc := service.NewRecipeService(
		session.NewMemoryStore(logger),
		service.NewBatchProcessor(extractor, logger),
		orchestrator,
		logger,
	)
	srv := httptest.NewServer(web.NewServer(svc, logger))
	t.Cleanup(func() {
		srv.Close()
		_ = database.Close()
	})
	return srv
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var snap session.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.NotEmpty(t, snap.ID)
	return snap.ID
}

// buildMultipartBody creates a multipart/form-data body with one "image" part
// per image and an optional context field.
func buildMultipartBody(t *testing.T, hint string, images ...[]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, img := range images {
		fw, err := w.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = fw.Write(img)
		require.NoError(t, err)
	}
	if hint != "" {
		require.NoError(t, w.WriteField("context", hint))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type uploadResult struct {
	Processed   int      `json:"processed"`
	Added       []string `json:"added"`
	Ingredients []string `json:"ingredients"`
	Failures    []struct {
		Index int    `json:"index"`
		Error string `json:"error"`
	} `json:"failures"`
}

func upload(t *testing.T, srv *httptest.Server, id, hint string, images ...[]byte) (int, uploadResult) {
	t.Helper()
	body, ct := buildMultipartBody(t, hint, images...)
	resp, err := http.Post(srv.URL+"/sessions/"+id+"/images", ct, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var out uploadResult
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestIntegration_UploadMergesBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	vis := &recordingVision{results: map[byte][]string{
		1: {"tomato", "cheese"},
		2: {"cheese", "basil"},
	}}
	srv := newTestServer(t, vis, &scriptedModel{reply: "Caprese"})
	id := createSession(t, srv)

	status, res := upload(t, srv, id, "top shelf", jpegWith(1), jpegWith(2))
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, []string{"tomato", "cheese", "basil"}, res.Ingredients)
	assert.Equal(t, []string{"tomato", "cheese", "basil"}, res.Added)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{"top shelf", "top shelf"}, vis.contexts)
	assert.Equal(t, [][]byte{jpegWith(1), jpegWith(2)}, vis.images, "uploads reach the extractor unmodified")

	var snap session.Snapshot
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id, nil, &snap))
	assert.Equal(t, 2, snap.ImageCount)
	assert.False(t, snap.Loading)
}

func TestIntegration_UploadUsesExtractionCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	vis := &recordingVision{results: map[byte][]string{1: {"eggs"}}}
	srv := newTestServer(t, vis, &scriptedModel{reply: "Omelette"})
	id := createSession(t, srv)

	status, _ := upload(t, srv, id, "", jpegWith(1))
	require.Equal(t, http.StatusOK, status)
	status, res := upload(t, srv, id, "", jpegWith(1))
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 1, vis.Calls())
	assert.Equal(t, []string{"eggs"}, res.Ingredients)
	assert.Empty(t, res.Added)
}

func TestIntegration_UploadPartialFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	vis := &recordingVision{results: map[byte][]string{2: {"milk"}}}
	srv := newTestServer(t, vis, &scriptedModel{})
	id := createSession(t, srv)

	status, res := upload(t, srv, id, "", jpegWith(1), jpegWith(2))
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 2, res.Processed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 0, res.Failures[0].Index)
	assert.Equal(t, []string{"milk"}, res.Ingredients)
}

func TestIntegration_UploadRejectsNonImage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	vis := &recordingVision{}
	srv := newTestServer(t, vis, &scriptedModel{})
	id := createSession(t, srv)

	status, _ := upload(t, srv, id, "", []byte("%PDF-1.4 malicious content"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 0, vis.Calls())

	status, _ = upload(t, srv, id, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIntegration_ManualIngredients(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestServer(t, &recordingVision{}, &scriptedModel{})
	id := createSession(t, srv)

	var out struct {
		Added       []string `json:"added"`
		Ingredients []string `json:"ingredients"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/ingredients", map[string]string{"text": " eggs, milk ,, eggs "}, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"eggs", "milk"}, out.Added)
	assert.Equal(t, []string{"eggs", "milk"}, out.Ingredients)

	status = doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+id+"/ingredients/eggs", nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"milk"}, out.Ingredients)

	status = doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+id+"/ingredients/flour", nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"milk"}, out.Ingredients)
}

func TestIntegration_Options(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestServer(t, &recordingVision{}, &scriptedModel{})
	id := createSession(t, srv)

	var opts domain.GenerationOptions
	status := doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/options", map[string]any{
		"cooking_methods":      []string{"oven", "stove", "oven"},
		"cooking_time_minutes": 45,
		"difficulty":           "easy",
	}, &opts)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []domain.CookingMethod{domain.MethodStove, domain.MethodOven}, opts.CookingMethods)
	assert.Equal(t, 45, opts.CookingTimeMinutes)
	assert.Equal(t, domain.DifficultyEasy, opts.Difficulty)
	assert.Equal(t, domain.CuisineAny, opts.Cuisine)

	var errResp map[string]string
	status = doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/options", map[string]any{"cooking_time_minutes": 500}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, errResp["error"])

	status = doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/options", map[string]any{"spiciness": 3}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIntegration_Conversation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	model := &scriptedModel{reply: "Omelette recipe..."}
	srv := newTestServer(t, &recordingVision{}, model)
	id := createSession(t, srv)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/ingredients", map[string]string{"text": "eggs, milk"}, nil))

	var out struct {
		Turn  domain.Turn `json:"turn"`
		Error string      `json:"error"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/messages", map[string]string{"text": "something quick"}, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Content: "Omelette recipe..."}, out.Turn)
	assert.Empty(t, out.Error)

	require.Len(t, model.requests, 1)
	assert.Len(t, model.requests[0].Messages, 2)
	assert.True(t, strings.Contains(model.requests[0].Messages[1].Content, "eggs, milk"))

	model.err = errors.New("upstream down")
	status = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/messages", map[string]string{"text": "again"}, &out)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, service.FallbackReply, out.Turn.Content)
	assert.NotEmpty(t, out.Error)

	var snap session.Snapshot
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id, nil, &snap))
	require.Len(t, snap.Transcript, 4)
	assert.Equal(t, domain.RoleUser, snap.Transcript[0].Role)
	assert.Equal(t, "Omelette recipe...", snap.Transcript[1].Content)
	assert.Equal(t, service.FallbackReply, snap.Transcript[3].Content)
}

func TestIntegration_UnknownAndDeletedSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestServer(t, &recordingVision{}, &scriptedModel{})

	var errResp map[string]string
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/sessions/nope", nil, &errResp))

	id := createSession(t, srv)
	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id, nil, &errResp))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/messages", map[string]string{"text": "hi"}, &errResp))
}
