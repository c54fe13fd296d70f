package build

import (
	"strings"
	"testing"
)

func TestVersion_Embedded(t *testing.T) {
	if Version() == "" {
		t.Fatal("Version() is empty, VERSION file not embedded")
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "ionstart/"+Version()) {
		t.Errorf("UserAgent() = %q, want prefix ionstart/%s", ua, Version())
	}
}
