package schema

import (
	"testing"
	"testing/quick"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My App", "my-app"},
		{"Conference App", "conference-app"},
		{"  spaced   out  ", "spaced-out"},
		{"Crème Brûlée", "creme-brulee"},
		{"a--b__c", "a-b__c"},
		{"!!!", "app"},
		{"日本語", "app"},
		{"-leading-and-trailing-", "leading-and-trailing"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyAlwaysValid(t *testing.T) {
	property := func(s string) bool {
		if s == "" {
			return true
		}
		return IsValidProjectID(Slugify(s))
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestIsValidProjectID(t *testing.T) {
	for _, ok := range []string{"myApp", "my-app", "my_app", "App1"} {
		if !IsValidProjectID(ok) {
			t.Errorf("IsValidProjectID(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "my app", "my.app", "../app", "app!"} {
		if IsValidProjectID(bad) {
			t.Errorf("IsValidProjectID(%q) = true", bad)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	for _, ok := range []string{"https://github.com/ionic-team/ionic-conference-app", "git://example.com/repo.git"} {
		if !IsValidURL(ok) {
			t.Errorf("IsValidURL(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "blank", "github.com/a/b", "/abs/path", "mailto:x"} {
		if IsValidURL(bad) {
			t.Errorf("IsValidURL(%q) = true", bad)
		}
	}
}
