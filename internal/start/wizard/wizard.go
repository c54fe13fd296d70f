// Package wizard fetches app definitions prepared in the web based app
// creation wizard.
package wizard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/httpclient"
	"github.com/tacogips/ionstart/internal/project"
)

var log = debug.New("start:wizard")

// ErrNoSuchApp is returned when the wizard has no app for an id.
var ErrNoSuchApp = errors.New("no such app")

// HTTP is the subset of the HTTP client used by the Bridge.
type HTTP interface {
	GetJSON(ctx context.Context, rawURL string, v interface{}, opts ...httpclient.RequestOption) error
	SendJSON(ctx context.Context, method, rawURL string, in, out interface{}, opts ...httpclient.RequestOption) error
}

// App is an app definition created by the wizard.
type App struct {
	Type      project.Type `json:"type"`
	Name      string       `json:"name"`
	AppID     string       `json:"appId"`
	Template  string       `json:"template"`
	PackageID string       `json:"package-id"`
	Theme     string       `json:"theme"`
	AppIcon   string       `json:"appIcon"`
	AppSplash string       `json:"appSplash"`
}

// Bridge talks to the wizard API.
type Bridge struct {
	baseURL string
	http    HTTP
}

// New creates a Bridge for the wizard hosted at baseURL.
func New(baseURL string, h HTTP) *Bridge {
	return &Bridge{baseURL: strings.TrimRight(baseURL, "/"), http: h}
}

func (b *Bridge) appURL(id string) string {
	return b.baseURL + "/api/v1/wizard/app/" + url.PathEscape(id)
}

// Lookup fetches the app prepared under id.
func (b *Bridge) Lookup(ctx context.Context, id string) (*App, error) {
	var app App
	if err := b.http.GetJSON(ctx, b.appURL(id), &app); err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w %s: wizard responded with status %d", ErrNoSuchApp, id, se.StatusCode)
		}
		return nil, fmt.Errorf("%w %s: %v", ErrNoSuchApp, id, err)
	}
	if app.Name == "" {
		return nil, fmt.Errorf("%w %s: empty response", ErrNoSuchApp, id)
	}
	log.Printf("wizard app %s: %s (%s/%s)", id, app.Name, app.Type, app.Template)
	return &app, nil
}

// MarkStarted tells the wizard that the app has been generated locally.
func (b *Bridge) MarkStarted(ctx context.Context, id string) error {
	return b.http.SendJSON(ctx, http.MethodPost, b.appURL(id)+"/start", nil, nil)
}

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// DecodeImage decodes a base64 image data URL. An empty string yields nil.
func DecodeImage(dataURL string) ([]byte, error) {
	if dataURL == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(dataURL, ""))
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}
	return data, nil
}
