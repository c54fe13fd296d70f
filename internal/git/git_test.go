package git

import (
	"context"
	"errors"
	"testing"

	"github.com/tacogips/ionstart/internal/shell/shelltest"
)

func TestClient_IsInstalled(t *testing.T) {
	rec := shelltest.New()
	rec.Outputs["git --version"] = "git version 2.43.0"
	if !New(rec).IsInstalled(context.Background()) {
		t.Error("IsInstalled() = false, want true")
	}

	missing := shelltest.New()
	missing.Missing = []string{"git"}
	if New(missing).IsInstalled(context.Background()) {
		t.Error("IsInstalled() = true with git missing")
	}
}

func TestClient_TopLevel(t *testing.T) {
	rec := shelltest.New()
	rec.Outputs["git rev-parse --show-toplevel"] = "/work/repo"
	if got := New(rec).TopLevel(context.Background(), "/work/repo/sub"); got != "/work/repo" {
		t.Errorf("TopLevel() = %q, want /work/repo", got)
	}

	outside := shelltest.New()
	outside.Fail["git rev-parse"] = errors.New("not a git repository")
	if got := New(outside).TopLevel(context.Background(), "/tmp"); got != "" {
		t.Errorf("TopLevel() = %q, want empty", got)
	}
}

func TestClient_Commands(t *testing.T) {
	rec := shelltest.New()
	c := New(rec)
	ctx := context.Background()

	if err := c.Clone(ctx, "https://github.com/ionic-team/ionic-conference-app", "/work/app"); err != nil {
		t.Fatal(err)
	}
	if err := c.Init(ctx, "/work/app"); err != nil {
		t.Fatal(err)
	}
	if err := c.AddAll(ctx, "/work/app"); err != nil {
		t.Fatal(err)
	}
	if err := c.Commit(ctx, "/work/app", "Initial commit"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"git clone https://github.com/ionic-team/ionic-conference-app /work/app --progress",
		"git init",
		"git add -A",
		"git commit -m 'Initial commit' --no-gpg-sign",
	}
	got := rec.Commands()
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, got[i], want[i])
		}
	}
	if rec.Calls[1].Dir != "/work/app" {
		t.Errorf("git init dir = %q", rec.Calls[1].Dir)
	}
}
