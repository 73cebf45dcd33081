package commands

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"widget-canvas/core"
	"widget-canvas/handlers/api"

	"github.com/go-chi/chi/v5"
)

// Mock store for testing
type mockStore struct {
	mu       sync.Mutex
	canvas   *core.CanvasDocument
	image    string
	hasImage bool
	saveErr  error
	loadErr  error
}

func (m *mockStore) SaveCanvas(ctx context.Context, doc *core.CanvasDocument) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canvas = doc
	return nil
}

func (m *mockStore) LoadCanvas(ctx context.Context) (*core.CanvasDocument, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.canvas == nil {
		return core.DefaultDocument(), nil
	}
	return m.canvas, nil
}

func (m *mockStore) SaveHeaderImage(ctx context.Context, dataURL string) error {
	if _, err := core.ParseDataURL(dataURL); err != nil {
		return err
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image, m.hasImage = dataURL, true
	return nil
}

func (m *mockStore) LoadHeaderImage(ctx context.Context) (string, bool, error) {
	if m.loadErr != nil {
		return "", false, m.loadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image, m.hasImage, nil
}

func (m *mockStore) DeleteHeaderImage(ctx context.Context) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image, m.hasImage = "", false
	return nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(event string) {
	n.events = append(n.events, event)
}

func invoke(t *testing.T, store Store, notifier core.Notifier, command, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/invoke/{command}", HandleInvoke(store, notifier))

	req := httptest.NewRequest(http.MethodPost, "/invoke/"+command, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp["error"]
}

const validCanvas = `{
	"theme": "dark",
	"settings": {"background_color": "#000000", "grid_enabled": false, "grid_size": 10, "snap_to_grid": true, "zoom_level": 1.5},
	"widgets": [],
	"canvas_size": {"width": 800, "height": 600}
}`

func TestLoadCanvasState_Default(t *testing.T) {
	rec := invoke(t, &mockStore{}, nil, "load_canvas_state", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}

	var doc core.CanvasDocument
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if doc.Theme != "light" || doc.CanvasSize.Width != 1920 {
		t.Errorf("Response should be the default canvas, got %+v", doc)
	}
}

func TestSaveCanvasState(t *testing.T) {
	store := &mockStore{}
	notifier := &recordingNotifier{}

	rec := invoke(t, store, notifier, "save_canvas_state", `{"canvasData": `+validCanvas+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, body %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Errorf("Unit result should render as null, got %s", got)
	}

	if store.canvas == nil || store.canvas.Theme != "dark" || store.canvas.Settings.ZoomLevel != 1.5 {
		t.Errorf("Canvas not saved correctly: %+v", store.canvas)
	}
	if len(notifier.events) != 1 || notifier.events[0] != core.EventCanvasChanged {
		t.Errorf("Notifier events mismatch: got %v", notifier.events)
	}
}

func TestSaveCanvasState_BadArgs(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{"missing key", `{}`, "missing required key canvasData"},
		{"null canvas", `{"canvasData": null}`, "missing required key canvasData"},
		{"wrong type", `{"canvasData": {"theme": 123}}`, "Failed to deserialize canvas data"},
		{"not an object", `[1, 2]`, "invalid args for command `save_canvas_state`"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{}
			notifier := &recordingNotifier{}
			rec := invoke(t, store, notifier, "save_canvas_state", tc.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if msg := errorMessage(t, rec); !strings.Contains(msg, tc.want) {
				t.Errorf("Error message mismatch: got %q, want it to contain %q", msg, tc.want)
			}
			if store.canvas != nil {
				t.Error("Store should not be touched on bad arguments")
			}
			if len(notifier.events) != 0 {
				t.Errorf("No event should be sent, got %v", notifier.events)
			}
		})
	}
}

func TestSaveCanvasState_StoreError(t *testing.T) {
	store := &mockStore{saveErr: core.IOError("Failed to write canvas data", fs.ErrPermission)}

	rec := invoke(t, store, nil, "save_canvas_state", `{"canvasData": `+validCanvas+`}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if msg := errorMessage(t, rec); !strings.HasPrefix(msg, "Failed to write canvas data") {
		t.Errorf("Error message mismatch: got %q", msg)
	}
}

func TestLoadCanvasState_StoreError(t *testing.T) {
	store := &mockStore{loadErr: core.DeserializationError("Failed to deserialize canvas data", errors.New("bad json"))}

	rec := invoke(t, store, nil, "load_canvas_state", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if msg := errorMessage(t, rec); msg != "Failed to deserialize canvas data: bad json" {
		t.Errorf("Error message mismatch: got %q", msg)
	}
}

func TestHeaderImageCommands(t *testing.T) {
	store := &mockStore{}
	notifier := &recordingNotifier{}

	rec := invoke(t, store, notifier, "load_header_image", "{}")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("load_header_image on empty store: code %d body %s", rec.Code, rec.Body.String())
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
	body, _ := json.Marshal(map[string]string{"imageData": dataURL})
	rec = invoke(t, store, notifier, "save_header_image", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("save_header_image failed: code %d body %s", rec.Code, rec.Body.String())
	}

	rec = invoke(t, store, notifier, "load_header_image", "")
	var got string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got != dataURL {
		t.Errorf("load_header_image mismatch: got %q, want %q", got, dataURL)
	}

	rec = invoke(t, store, notifier, "delete_header_image", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete_header_image failed: code %d", rec.Code)
	}
	if store.hasImage {
		t.Error("delete_header_image did not remove the image")
	}

	want := []string{core.EventHeaderImageChanged, core.EventHeaderImageChanged}
	if len(notifier.events) != len(want) {
		t.Errorf("Notifier events mismatch: got %v, want %v", notifier.events, want)
	}
}

func TestSaveHeaderImage_Rejected(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{"missing key", `{}`, "missing required key imageData"},
		{"not a string", `{"imageData": 42}`, "invalid args `imageData`"},
		{"no comma", `{"imageData": "no comma"}`, "Invalid image data format"},
		{"bad base64", `{"imageData": "data:image/png;base64,@@@@"}`, "Failed to decode image data"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := invoke(t, &mockStore{}, nil, "save_header_image", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if msg := errorMessage(t, rec); !strings.Contains(msg, tc.want) {
				t.Errorf("Error message mismatch: got %q, want it to contain %q", msg, tc.want)
			}
		})
	}
}

func TestSaveHeaderImage_BodyTooLarge(t *testing.T) {
	store := &mockStore{}
	notifier := &recordingNotifier{}
	payload := strings.Repeat("A", api.MaxBodyBytes)
	body := `{"imageData": "data:image/png;base64,` + payload + `"}`

	rec := invoke(t, store, notifier, "save_header_image", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
	if store.hasImage {
		t.Error("Oversized image should not be stored")
	}
	if len(notifier.events) != 0 {
		t.Errorf("No events expected, got %v", notifier.events)
	}
}

func TestUnknownCommand(t *testing.T) {
	rec := invoke(t, &mockStore{}, nil, "greet", `{"name": "x"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if msg := errorMessage(t, rec); msg != "command greet not found" {
		t.Errorf("Error message mismatch: got %q", msg)
	}
}
