// Package appflow looks up, creates and links apps on the app service.
package appflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/httpclient"
	"github.com/tacogips/ionstart/internal/project"
)

var log = debug.New("appflow")

// ErrNotLoggedIn is returned when no user token is configured.
var ErrNotLoggedIn = errors.New("not logged in: set IONIC_TOKEN or tokens.user in the CLI config")

// HTTP is the subset of the HTTP client used by Client.
type HTTP interface {
	GetJSON(ctx context.Context, rawURL string, v interface{}, opts ...httpclient.RequestOption) error
	SendJSON(ctx context.Context, method, rawURL string, in, out interface{}, opts ...httpclient.RequestOption) error
}

// App is a remote app.
type App struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	RepoURL string `json:"repo_url,omitempty"`
}

type envelope struct {
	Data App `json:"data"`
}

// Client calls the app service API.
type Client struct {
	apiURL string
	token  string
	http   HTTP
}

// New creates a Client. token may be empty; calls then fail with ErrNotLoggedIn.
func New(apiURL, token string, h HTTP) *Client {
	return &Client{apiURL: strings.TrimRight(apiURL, "/"), token: token, http: h}
}

// Load fetches the app with the given id.
func (c *Client) Load(ctx context.Context, id string) (*App, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	var res envelope
	if err := c.http.GetJSON(ctx, c.apiURL+"/apps/"+url.PathEscape(id), &res, httpclient.WithBearer(c.token)); err != nil {
		return nil, fmt.Errorf("failed to load app %s: %w", id, err)
	}
	if res.Data.ID == "" {
		return nil, fmt.Errorf("failed to load app %s: empty response", id)
	}
	return &res.Data, nil
}

// Create registers a new app named name.
func (c *Client) Create(ctx context.Context, name string) (*App, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	var res envelope
	body := map[string]string{"name": name}
	if err := c.http.SendJSON(ctx, http.MethodPost, c.apiURL+"/apps", body, &res, httpclient.WithBearer(c.token)); err != nil {
		return nil, fmt.Errorf("failed to create app %q: %w", name, err)
	}
	return &res.Data, nil
}

// Link connects a local project to a remote app. When appID is empty a new
// app named name is created first. The app id is stored as "id" in the
// project configuration.
func (c *Client) Link(ctx context.Context, p *project.Project, appID, name string) (*App, error) {
	var (
		app *App
		err error
	)
	if appID == "" {
		app, err = c.Create(ctx, name)
	} else {
		app, err = c.Load(ctx, appID)
	}
	if err != nil {
		return nil, err
	}

	if err := p.Config.Set("id", app.ID); err != nil {
		return nil, fmt.Errorf("failed to save app id: %w", err)
	}
	log.Printf("linked %s to app %s", p.Dir, app.ID)
	return app, nil
}
