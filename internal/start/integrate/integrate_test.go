package integrate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tacogips/ionstart/internal/appflow"
	"github.com/tacogips/ionstart/internal/git"
	"github.com/tacogips/ionstart/internal/integrations"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/prompt/prompttest"
	"github.com/tacogips/ionstart/internal/shell/shelltest"
	"github.com/tacogips/ionstart/internal/start/model"
	"github.com/tacogips/ionstart/internal/start/schema"
)

type fakePath struct {
	fn func(string) string
}

func (f *fakePath) SetAlterPath(fn func(string) string) { f.fn = fn }

type fakeLinker struct {
	calls []string
	err   error
}

func (f *fakeLinker) Link(_ context.Context, p *project.Project, appID, name string) (*appflow.App, error) {
	f.calls = append(f.calls, appID+"|"+name)
	if f.err != nil {
		return nil, f.err
	}
	return &appflow.App{ID: "a1b2c3", Name: name}, nil
}

type fixture struct {
	orch   *Orchestrator
	rec    *shelltest.Recorder
	path   *fakePath
	linker *fakeLinker
	prompt *prompttest.Scripted
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newFixture(t *testing.T, answers map[string]interface{}) *fixture {
	t.Helper()
	f := &fixture{
		rec:    shelltest.New(),
		path:   &fakePath{},
		linker: &fakeLinker{},
		prompt: prompttest.New(answers),
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	printer := output.NewPrinter(f.out, f.errOut)
	printer.SetNoColor(true)
	f.orch = &Orchestrator{
		Shell:        f.rec,
		Path:         f.path,
		NpmClient:    "npm",
		Git:          func() Git { return git.New(f.rec) },
		Integrations: &integrations.Enabler{Shell: f.rec, NpmClient: "npm"},
		Linker:       func() (Linker, error) { return f.linker, nil },
		Prompt:       f.prompt,
		Log:          printer,
		Colors:       output.NewColors(false),
	}
	return f
}

func newGenerated(t *testing.T, typ project.Type, appID string) (*model.Generated, *project.Project) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "my-app")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, project.ConfigFileName), `{"name":"starter","type":"`+string(typ)+`"}`)
	writeFile(t, filepath.Join(dir, "package.json"), `{"name":"starter","version":"1.2.3"}`)
	p, err := project.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := model.NewGenerated(model.GeneratedFields{
		DisplayName:  "My App",
		ProjectType:  typ,
		TemplateName: "blank",
		ProjectID:    "my-app",
		ProjectDir:   dir,
		RemoteAppID:  appID,
	})
	return s, p
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func defaultOptions() schema.Options {
	return schema.Options{Deps: true, Git: true}
}

func (f *fixture) run(t *testing.T, s model.Schema, p *project.Project, opts schema.Options) *Outcome {
	t.Helper()
	ctx := context.Background()
	st := f.orch.Begin(ctx, s, opts, filepath.Dir(s.ProjectDir()))
	out, err := f.orch.Run(ctx, Plan{Schema: s, Project: p, Options: opts, State: st})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out
}

func TestRun_GeneratedAngular(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.Angular, "")

	out := f.run(t, s, p, defaultOptions())

	for _, want := range []string{
		"npx --no-install cap init 'My App' io.ionic.starter --web-dir www",
		"npm i",
		"git init",
		"git add -A",
		"git commit -m 'Initial commit' --no-gpg-sign",
	} {
		if !f.rec.Ran(want) {
			t.Errorf("command %q not run; got %v", want, f.rec.Commands())
		}
	}
	if !out.State.CapacitorEnabled() {
		t.Error("angular without --cordova should default to capacitor")
	}
	if !out.State.Git.Enabled() {
		t.Error("git should stay enabled")
	}
	if len(f.prompt.Asked) != 0 {
		t.Errorf("unexpected prompts: %v", f.prompt.Asked)
	}
	if got := p.Name(); got != "My App" {
		t.Errorf("project name = %q, want personalized name", got)
	}
}

func TestRun_CommandOrder(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.React, "")
	f.run(t, s, p, defaultOptions())

	var order []string
	for _, c := range f.rec.Commands() {
		for _, prefix := range []string{"npx", "npm i", "git init", "git add", "git commit"} {
			if strings.HasPrefix(c, prefix) {
				order = append(order, prefix)
			}
		}
	}
	want := []string{"npx", "npm i", "git init", "git add", "git commit"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRun_GitInitFailureDisablesCommit(t *testing.T) {
	f := newFixture(t, nil)
	f.rec.Fail["git init"] = errors.New("exit status 128")
	s, p := newGenerated(t, project.Angular, "")

	out := f.run(t, s, p, defaultOptions())

	if out.State.Git.Enabled() {
		t.Error("git should be disabled after init failure")
	}
	if f.rec.Ran("git add") || f.rec.Ran("git commit") {
		t.Errorf("no git command may run after init failure: %v", f.rec.Commands())
	}
	if !strings.Contains(f.out.String(), "Error encountered during repo initialization") {
		t.Errorf("missing warning: %s", f.out.String())
	}
}

func TestRun_GitCommitFailureIsRecoverable(t *testing.T) {
	f := newFixture(t, nil)
	f.rec.Fail["git commit"] = errors.New("exit status 1")
	s, p := newGenerated(t, project.Vue, "")

	out := f.run(t, s, p, defaultOptions())

	if out.State.Git.Enabled() {
		t.Error("git should be disabled after commit failure")
	}
	if !strings.Contains(f.out.String(), "Error encountered during commit") {
		t.Errorf("missing warning: %s", f.out.String())
	}
}

func TestRun_NoDepsWarnsOnce(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.Angular, "")
	opts := defaultOptions()
	opts.Deps = false

	f.run(t, s, p, opts)

	if f.rec.Ran("npm i") {
		t.Error("install must not run with --no-deps")
	}
	if n := strings.Count(f.out.String(), "out of date package lock file"); n != 1 {
		t.Errorf("stale lock warning printed %d times", n)
	}
}

func TestRun_NoGit(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.Angular, "")
	opts := defaultOptions()
	opts.Git = false

	f.run(t, s, p, opts)

	if f.rec.Ran("git init") || f.rec.Ran("git commit") {
		t.Errorf("git must not run with --no-git: %v", f.rec.Commands())
	}
}

func TestBegin_ExistingRepository(t *testing.T) {
	f := newFixture(t, nil)
	f.rec.Outputs["git rev-parse"] = "/work/monorepo"
	s, _ := newGenerated(t, project.Angular, "")

	st := f.orch.Begin(context.Background(), s, defaultOptions(), "/work/monorepo/apps")

	if st.Git.Enabled() {
		t.Error("git must be disabled inside an existing repository")
	}
	if !strings.Contains(f.out.String(), "Existing git project found (/work/monorepo)") {
		t.Errorf("missing info: %s", f.out.String())
	}
}

func TestBegin_GitMissing(t *testing.T) {
	f := newFixture(t, nil)
	f.rec.Missing = []string{"git"}
	s, _ := newGenerated(t, project.Angular, "")

	st := f.orch.Begin(context.Background(), s, defaultOptions(), t.TempDir())
	if st.Git.Enabled() {
		t.Error("git must be disabled when not installed")
	}
}

func TestBegin_LinkState(t *testing.T) {
	f := newFixture(t, nil)
	s, _ := newGenerated(t, project.Angular, "a1b2c3")

	st := f.orch.Begin(context.Background(), s, defaultOptions(), t.TempDir())
	if !st.Link.AppIDSupplied || !st.Link.Confirmed() {
		t.Errorf("link state = %+v", st.Link)
	}
}

func TestRun_Manifest(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.Angular, "")
	manifest := filepath.Join(s.ProjectDir(), model.ManifestFileName)
	writeFile(t, manifest, `{"name":"Tabs","welcome":"Read the docs!"}`)

	out := f.run(t, s, p, defaultOptions())

	if _, err := os.Stat(manifest); !os.IsNotExist(err) {
		t.Error("manifest should be deleted")
	}
	if out.Manifest == nil || out.Manifest.Welcome != "Read the docs!" {
		t.Fatalf("manifest = %+v", out.Manifest)
	}
	text := f.out.String()
	if !strings.Contains(text, "Starter Welcome:\nRead the docs!") {
		t.Errorf("welcome not printed: %s", text)
	}
}

func TestRun_InvalidManifestIsRemoved(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.Angular, "")
	manifest := filepath.Join(s.ProjectDir(), model.ManifestFileName)
	writeFile(t, manifest, `{not json`)

	out := f.run(t, s, p, defaultOptions())

	if out.Manifest != nil {
		t.Errorf("manifest = %+v, want nil", out.Manifest)
	}
	if _, err := os.Stat(manifest); !os.IsNotExist(err) {
		t.Error("unreadable manifest should still be deleted")
	}
	if strings.Contains(f.out.String(), "Starter Welcome") {
		t.Error("no welcome expected")
	}
}

func TestRun_CordovaUnsupported(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.React, "")
	opts := defaultOptions()
	opts.Cordova = boolPtr(true)

	out := f.run(t, s, p, opts)

	if out.State.CordovaEnabled() {
		t.Error("cordova should be downgraded for react")
	}
	if !out.State.CapacitorEnabled() {
		t.Error("react always uses capacitor")
	}
	if !strings.Contains(f.errOut.String(), "Cordova is not supported") {
		t.Errorf("missing error: %s", f.errOut.String())
	}
}

func TestRun_CordovaDeclined(t *testing.T) {
	f := newFixture(t, map[string]interface{}{"cordova": false, "capacitor": false})
	s, p := newGenerated(t, project.Angular, "")
	opts := defaultOptions()
	opts.Cordova = boolPtr(true)

	out := f.run(t, s, p, opts)

	if out.State.CordovaEnabled() || out.State.CapacitorEnabled() {
		t.Errorf("state = cordova %v capacitor %v", out.State.Cordova, out.State.Capacitor)
	}
	if !f.prompt.WasAsked("capacitor") {
		t.Error("capacitor offer expected after declining cordova")
	}
	if f.rec.Ran("npx --no-install cap") {
		t.Error("capacitor must not be enabled")
	}
}

func TestRun_CordovaAccepted(t *testing.T) {
	f := newFixture(t, map[string]interface{}{"cordova": true})
	s, p := newGenerated(t, project.Angular, "")
	opts := defaultOptions()
	opts.Cordova = boolPtr(true)

	out := f.run(t, s, p, opts)

	if !out.State.CordovaEnabled() {
		t.Error("cordova should be enabled")
	}
	if f.prompt.WasAsked("capacitor") {
		t.Error("capacitor offer must be skipped with cordova")
	}
	if r, _ := p.Config.Get("integrations.cordova"); !r.IsObject() {
		t.Error("cordova integration not recorded")
	}
}

func TestRun_CapacitorFailureDowngrades(t *testing.T) {
	f := newFixture(t, nil)
	f.rec.Fail["npx --no-install cap"] = errors.New("exit status 1")
	s, p := newGenerated(t, project.Vue, "")

	out := f.run(t, s, p, defaultOptions())

	if out.State.CapacitorEnabled() {
		t.Error("capacitor should be downgraded")
	}
	if !f.rec.Ran("git commit") {
		t.Error("run should continue after capacitor failure")
	}
}

func TestRun_Link(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.Angular, "a1b2c3")
	opts := defaultOptions()
	opts.Link = true

	out := f.run(t, s, p, opts)

	if len(f.linker.calls) != 1 || f.linker.calls[0] != "a1b2c3|My App" {
		t.Errorf("link calls = %v", f.linker.calls)
	}
	if !out.State.Link.LinkStepRan {
		t.Error("LinkStepRan should be set")
	}
}

func TestRun_LinkFailureIsFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.linker.err = appflow.ErrNotLoggedIn
	s, p := newGenerated(t, project.Angular, "")
	opts := defaultOptions()
	opts.Link = true

	ctx := context.Background()
	st := f.orch.Begin(ctx, s, opts, filepath.Dir(s.ProjectDir()))
	_, err := f.orch.Run(ctx, Plan{Schema: s, Project: p, Options: opts, State: st})
	if !errors.Is(err, appflow.ErrNotLoggedIn) {
		t.Errorf("Run() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestRun_Cloned(t *testing.T) {
	f := newFixture(t, nil)
	dir := t.TempDir()
	s := model.NewCloned("https://github.com/ionic-team/starter.git", "starter", dir)

	out := f.run(t, s, nil, defaultOptions())

	if !f.rec.Ran("npm i") {
		t.Error("cloned projects still install dependencies")
	}
	for _, c := range []string{"git init", "git commit", "npx"} {
		if f.rec.Ran(c) {
			t.Errorf("%q must not run for cloned projects", c)
		}
	}
	if out.Manifest != nil {
		t.Error("cloned projects have no manifest handling")
	}
}

func TestRun_AltersPath(t *testing.T) {
	f := newFixture(t, nil)
	s, p := newGenerated(t, project.Angular, "")
	f.run(t, s, p, defaultOptions())

	if f.path.fn == nil {
		t.Fatal("PATH not altered")
	}
	want := filepath.Join(s.ProjectDir(), "node_modules", ".bin")
	if got := f.path.fn("/usr/bin"); !strings.HasPrefix(got, want) {
		t.Errorf("PATH = %q, want prefix %q", got, want)
	}
}

func TestGitState_Monotonic(t *testing.T) {
	g := NewGitState(true, true, "")
	if !g.Enabled() {
		t.Fatal("expected enabled")
	}
	g.Disable()
	if g.Enabled() {
		t.Error("disable must stick")
	}
	if NewGitState(true, false, "").Enabled() || NewGitState(false, true, "").Enabled() || NewGitState(true, true, "/repo").Enabled() {
		t.Error("git must start disabled when any precondition fails")
	}
}
