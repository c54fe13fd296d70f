package schema

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tacogips/ionstart/internal/output"
)

func newPrinter() (*output.Printer, *bytes.Buffer) {
	var out bytes.Buffer
	p := output.NewPrinter(&out, &out)
	p.SetNoColor(true)
	return p, &out
}

func TestCanonicalize_Defaults(t *testing.T) {
	p, _ := newPrinter()
	opts, err := Canonicalize(RawOptions{Type: "react"}, p, output.NewColors(false))
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	if !opts.Deps || !opts.Git || opts.Tag != "latest" || opts.Type != "react" {
		t.Errorf("Canonicalize() = %+v", opts)
	}
	if opts.Cordova != nil || opts.Capacitor != nil {
		t.Error("integration choices must stay unset")
	}
}

func TestCanonicalize_RemovedFlags(t *testing.T) {
	p, _ := newPrinter()
	_, err := Canonicalize(RawOptions{V2: true}, p, output.NewColors(false))
	var ve *ValidationError
	if !errors.As(err, &ve) || !strings.Contains(ve.Message, "--type") {
		t.Errorf("Canonicalize() error = %v", err)
	}
}

func TestCanonicalize_DeprecatedFlags(t *testing.T) {
	p, out := newPrinter()
	opts, err := Canonicalize(RawOptions{AppName: "x", DisplayName: "y", BundleID: "com.example.app"}, p, output.NewColors(false))
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	if opts.PackageID != "com.example.app" {
		t.Errorf("PackageID = %q", opts.PackageID)
	}
	if n := strings.Count(out.String(), "[WARN]"); n != 3 {
		t.Errorf("got %d warnings:\n%s", n, out.String())
	}

	opts, err = Canonicalize(RawOptions{BundleID: "com.old", PackageID: "com.new"}, p, output.NewColors(false))
	if err != nil {
		t.Fatal(err)
	}
	if opts.PackageID != "com.new" {
		t.Errorf("--package-id must win over --bundle-id, got %q", opts.PackageID)
	}
}

func TestCanonicalize_InvalidTag(t *testing.T) {
	p, _ := newPrinter()
	_, err := Canonicalize(RawOptions{Tag: "stable"}, p, output.NewColors(false))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "--tag" {
		t.Errorf("Canonicalize() error = %v", err)
	}
}
