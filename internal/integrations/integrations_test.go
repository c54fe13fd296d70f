package integrations

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/prompt/prompttest"
	"github.com/tacogips/ionstart/internal/shell/shelltest"
)

func newProject(t *testing.T, typ project.Type) *project.Project {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, project.ConfigFileName), []byte(`{"name":"x","type":"`+string(typ)+`"}`), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := project.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestEnableCapacitor(t *testing.T) {
	tests := []struct {
		typ       project.Type
		client    string
		packageID string
		want      string
	}{
		{project.Angular, "npm", "", "npx --no-install cap init 'My App' io.ionic.starter --web-dir www"},
		{project.React, "yarn", "com.example.app", "yarn run cap init 'My App' com.example.app --web-dir build"},
		{project.Vue, "pnpm", "com.example.app", "pnpm exec cap init 'My App' com.example.app --web-dir dist"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			p := newProject(t, tt.typ)
			rec := shelltest.New()
			e := &Enabler{Shell: rec, NpmClient: tt.client}

			if err := e.Enable(context.Background(), p, Capacitor, "My App", tt.packageID); err != nil {
				t.Fatalf("Enable() error = %v", err)
			}
			if cmds := rec.Commands(); len(cmds) != 1 || cmds[0] != tt.want {
				t.Errorf("commands = %v, want %q", cmds, tt.want)
			}
			if rec.Calls[0].Dir != p.Dir {
				t.Errorf("dir = %s", rec.Calls[0].Dir)
			}
			if r, _ := p.Config.Get("integrations.capacitor"); !r.IsObject() {
				t.Error("integrations.capacitor not recorded")
			}
		})
	}
}

func TestEnableCapacitor_Failure(t *testing.T) {
	p := newProject(t, project.Angular)
	rec := shelltest.New()
	rec.Fail["npx"] = errors.New("exit status 1")
	e := &Enabler{Shell: rec, NpmClient: "npm"}

	if err := e.EnableCapacitor(context.Background(), p, "x", ""); err == nil {
		t.Fatal("EnableCapacitor() should fail")
	}
	if r, _ := p.Config.Get("integrations.capacitor"); r.Exists() {
		t.Error("integration must not be recorded after failure")
	}
}

func TestEnableCordova(t *testing.T) {
	p := newProject(t, project.IonicAngular)
	e := &Enabler{Shell: shelltest.New(), NpmClient: "npm"}
	if err := e.Enable(context.Background(), p, Cordova, "x", ""); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	if r, _ := p.Config.Get("integrations.cordova"); !r.IsObject() {
		t.Error("integrations.cordova not recorded")
	}

	if err := e.EnableCordova(newProject(t, project.React)); err == nil {
		t.Error("EnableCordova() should reject react projects")
	}
}

func TestCheckCordovaSupport(t *testing.T) {
	for _, ok := range []project.Type{project.Angular, project.IonicAngular, project.Ionic1} {
		if err := CheckCordovaSupport(ok); err != nil {
			t.Errorf("CheckCordovaSupport(%s) = %v", ok, err)
		}
	}
	for _, bad := range []project.Type{project.React, project.Vue, project.Custom} {
		if err := CheckCordovaSupport(bad); err == nil {
			t.Errorf("CheckCordovaSupport(%s) should fail", bad)
		}
	}
}

func TestConfirmCordovaUsage(t *testing.T) {
	var out bytes.Buffer
	printer := output.NewPrinter(&out, &out)
	printer.SetNoColor(true)

	ok, err := ConfirmCordovaUsage(prompttest.New(map[string]interface{}{"cordova": false}), printer, output.NewColors(false))
	if err != nil || ok {
		t.Errorf("ConfirmCordovaUsage() = %v, %v", ok, err)
	}
	if !strings.Contains(out.String(), "[WARN]") {
		t.Error("expected a warning before confirming")
	}
}
