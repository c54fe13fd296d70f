package project

import (
	"fmt"
	"strconv"
)

const (
	DefaultServeHost = "localhost"
	DefaultServePort = 8100
	DefaultLabPort   = 8200
)

// ServeOptions are the dev server settings shared by every runner.
type ServeOptions struct {
	Host          string
	Port          int
	External      bool
	Open          bool
	LiveReload    bool
	Proxy         bool
	Lab           bool
	LabHost       string
	LabPort       int
	Browser       string
	BrowserOption string
	// Extra is passed through to the underlying tool.
	Extra []string
}

// ServeCommand describes how to start the dev server of a project. Exactly
// one of Bin and Script is set: Bin is an executable resolved from the
// project's node_modules/.bin, Script is a package.json script.
type ServeCommand struct {
	Bin    string
	Script string
	Args   []string
	Env    []string
}

// ErrServeUnsupported is returned for project types without a dev server runner.
type ErrServeUnsupported struct {
	Type Type
}

func (e *ErrServeUnsupported) Error() string {
	if e.Type == "" {
		return "project type is not set; cannot determine how to serve"
	}
	return fmt.Sprintf("serving %s projects is not supported", e.Type)
}

// SupportsLab reports whether the runner for t understands --lab.
func SupportsLab(t Type) bool {
	return t == IonicAngular
}

// ServeCommandFor maps a project type and options to the runner invocation.
func ServeCommandFor(t Type, opts ServeOptions) (ServeCommand, error) {
	host := opts.Host
	if host == "" {
		host = DefaultServeHost
	}
	if opts.External {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port == 0 {
		port = DefaultServePort
	}
	portStr := strconv.Itoa(port)

	var cmd ServeCommand
	switch t {
	case Angular:
		cmd = ServeCommand{Bin: "ng", Args: []string{"serve", "--host", host, "--port", portStr}}
		if opts.Open {
			cmd.Args = append(cmd.Args, "--open")
		}
		if !opts.LiveReload {
			cmd.Args = append(cmd.Args, "--live-reload=false")
		}

	case React:
		cmd = ServeCommand{Bin: "react-scripts", Args: []string{"start"}, Env: []string{"HOST=" + host, "PORT=" + portStr}}
		switch {
		case !opts.Open:
			cmd.Env = append(cmd.Env, "BROWSER=none")
		case opts.Browser != "":
			cmd.Env = append(cmd.Env, "BROWSER="+opts.Browser)
		}
		if !opts.LiveReload {
			cmd.Env = append(cmd.Env, "FAST_REFRESH=false")
		}

	case Vue:
		cmd = ServeCommand{Bin: "vue-cli-service", Args: []string{"serve", "--host", host, "--port", portStr}}
		if opts.Open {
			cmd.Args = append(cmd.Args, "--open")
		}

	case IonicAngular:
		cmd = ServeCommand{Bin: "ionic-app-scripts", Args: []string{"serve", "--address", host, "--port", portStr}}
		if !opts.Open {
			cmd.Args = append(cmd.Args, "--nobrowser")
		}
		if !opts.LiveReload {
			cmd.Args = append(cmd.Args, "--nolivereload")
		}
		if !opts.Proxy {
			cmd.Args = append(cmd.Args, "--noproxy")
		}
		if opts.Lab {
			labHost := opts.LabHost
			if labHost == "" {
				labHost = DefaultServeHost
			}
			labPort := opts.LabPort
			if labPort == 0 {
				labPort = DefaultLabPort
			}
			cmd.Args = append(cmd.Args, "--lab", "--lab-host", labHost, "--lab-port", strconv.Itoa(labPort))
		}
		if opts.Browser != "" {
			cmd.Args = append(cmd.Args, "--browser", opts.Browser)
		}
		if opts.BrowserOption != "" {
			cmd.Args = append(cmd.Args, "--browseroption", opts.BrowserOption)
		}

	case Custom:
		cmd = ServeCommand{Script: "ionic:serve"}

	default:
		return ServeCommand{}, &ErrServeUnsupported{Type: t}
	}

	cmd.Args = append(cmd.Args, opts.Extra...)
	return cmd, nil
}
