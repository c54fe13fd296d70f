package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tacogips/ionstart/internal/app"
	"github.com/tacogips/ionstart/internal/archive/archivetest"
	"github.com/tacogips/ionstart/internal/config"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/prompt/prompttest"
	"github.com/tacogips/ionstart/internal/shell/shelltest"
	"github.com/tacogips/ionstart/internal/tasks"
)

// starterFiles is the content of every starter archive served by the fake CDN.
var starterFiles = map[string]string{
	"package.json":             `{"name":"starter","version":"5.0.0","private":true}`,
	"ionic.config.json":        `{"name":"starter","integrations":{},"type":"angular"}`,
	"capacitor.config.json":    `{"appId":"io.ionic.starter","appName":"starter","webDir":"www"}`,
	"src/theme/variables.scss": ":root {\n  --ion-color-primary: #3880ff;\n  --ion-color-primary-rgb: 56, 128, 255;\n  --ion-color-primary-shade: #3171e0;\n  --ion-color-primary-tint: #4c8dff;\n}\n",
	"src/app/app.component.ts": "export class AppComponent {}\n",
	"ionic.starter.json":       `{"name":"Starter","welcome":"Thanks for trying the starter!"}`,
}

// server fakes the starter CDN, the wizard and the app service.
type server struct {
	*httptest.Server
	mu    sync.Mutex
	hits  map[string]int
	posts []string
}

func newServer(t *testing.T) *server {
	t.Helper()
	archive := archivetest.TarGz(t, starterFiles)
	s := &server{hits: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if filepath.Ext(r.URL.Path) == ".gz" {
			_, _ = w.Write(archive)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/next/starters.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"starters": []map[string]string{
				{"name": "tabs-legacy", "id": "angular-legacy-tabs", "type": "angular"},
			},
		})
	})
	mux.HandleFunc("/api/v1/wizard/app/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			s.mu.Lock()
			s.posts = append(s.posts, r.URL.Path)
			s.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.URL.Path != "/api/v1/wizard/app/wiz123" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]string{
			"type":       "angular",
			"name":       "Wizard App",
			"template":   "tabs",
			"package-id": "com.example.wizard",
			"theme":      "#ff0000",
			"appIcon":    "data:image/png;base64,aWNvbg==",
		})
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// harness is an app.Env wired to the fake server with recorded subprocesses.
type harness struct {
	env    *app.Env
	srv    *server
	rec    *shelltest.Recorder
	prompt *prompttest.Scripted
	out    *bytes.Buffer
}

func newHarness(t *testing.T, workDir string, answers map[string]interface{}) *harness {
	t.Helper()
	srv := newServer(t)

	cfg := config.DefaultConfig()
	cfg.URLs.Starters = srv.URL
	cfg.URLs.Wizard = srv.URL
	cfg.URLs.API = srv.URL
	cfg.NpmClient = "npm"

	h := &harness{
		srv:    srv,
		rec:    shelltest.New(),
		prompt: prompttest.New(answers),
		out:    &bytes.Buffer{},
	}
	printer := output.NewPrinter(h.out, h.out)
	printer.SetNoColor(true)
	h.env = app.NewEnv(app.EnvOptions{
		Config:  cfg,
		Log:     printer,
		Colors:  output.NewColors(false),
		Prompt:  h.prompt,
		Shell:   h.rec,
		Tasks:   tasks.NewChain(h.out, false),
		WorkDir: workDir,
	})
	return h
}

func readJSON(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var v map[string]interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("invalid JSON in %s: %v", path, err)
	}
	return v
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
