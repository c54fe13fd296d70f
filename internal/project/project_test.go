package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readJSON(t *testing.T, path, key string) gjson.Result {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return gjson.GetBytes(data, key)
}

func TestFind_None(t *testing.T) {
	p, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if p != nil {
		t.Errorf("Find() = %+v, want nil", p)
	}
}

func TestFind_AppFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), `{"name":"My App","type":"angular"}`)
	sub := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	p, err := Find(sub)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if p == nil || p.Context != ContextApp {
		t.Fatalf("Find() = %+v, want app project", p)
	}
	if p.Dir != root {
		t.Errorf("Dir = %s, want %s", p.Dir, root)
	}
	if p.Type() != Angular || p.Name() != "My App" {
		t.Errorf("Type() = %s, Name() = %s", p.Type(), p.Name())
	}
}

func TestFind_MultiApp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), `{
  "defaultProject": "web",
  "projects": {
    "web": {"name": "Web", "type": "react", "root": "apps/web"},
    "admin": {"name": "Admin", "type": "angular", "root": "apps/admin"}
  }
}`)

	p, err := Find(root)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if p.Context != ContextMultiApp {
		t.Fatalf("Context = %s, want multiapp", p.Context)
	}
	if p.ID != "web" || p.Dir != filepath.Join(root, "apps", "web") {
		t.Errorf("default project = %s at %s", p.ID, p.Dir)
	}
	if p.Type() != React {
		t.Errorf("Type() = %s, want react", p.Type())
	}

	adminDir := filepath.Join(root, "apps", "admin", "src")
	if err := os.MkdirAll(adminDir, 0755); err != nil {
		t.Fatal(err)
	}
	p, err = Find(adminDir)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if p.ID != "admin" || p.Type() != Angular {
		t.Errorf("Find(admin) = %s (%s)", p.ID, p.Type())
	}
}

func TestFind_InvalidJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), `{not json`)
	if _, err := Find(root); err == nil {
		t.Error("Find() should fail on invalid JSON")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("Load() should fail without config")
	}
}

func TestConfig_SetAndGetWithPrefix(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigFileName)
	writeFile(t, path, `{"projects":{}}`)

	p := NewMultiApp(root, "my-app", filepath.Join(root, "my-app"))
	if err := p.Config.Set("type", "vue"); err != nil {
		t.Fatal(err)
	}
	if err := p.Config.Set("root", "my-app"); err != nil {
		t.Fatal(err)
	}
	if err := p.Config.SetRaw("integrations.capacitor", "{}"); err != nil {
		t.Fatal(err)
	}

	if got := readJSON(t, path, "projects.my-app.type").String(); got != "vue" {
		t.Errorf("type = %q", got)
	}
	if got := readJSON(t, path, "projects.my-app.integrations.capacitor"); !got.IsObject() {
		t.Errorf("integrations.capacitor = %s, want object", got.Raw)
	}
	if p.Type() != Vue {
		t.Errorf("Type() = %s", p.Type())
	}

	if err := p.Config.Delete("root"); err != nil {
		t.Fatal(err)
	}
	if readJSON(t, path, "projects.my-app.root").Exists() {
		t.Error("root should be deleted")
	}
}

func TestConfig_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	c := OpenConfig(path, "")
	if c.GetString("anything") != "" {
		t.Error("missing file should read as empty object")
	}
	if err := c.Set("id", "abc123"); err != nil {
		t.Fatal(err)
	}
	if got := readJSON(t, path, "id").String(); got != "abc123" {
		t.Errorf("id = %q", got)
	}
}

func TestEscapeKey(t *testing.T) {
	if got := EscapeKey("a.b*c?"); got != `a\.b\*c\?` {
		t.Errorf("EscapeKey() = %q", got)
	}
}
