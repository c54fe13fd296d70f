// Package pkgmanager maps abstract package manager intents to concrete command lines.
package pkgmanager

import "fmt"

// Command is an abstract package manager action.
type Command string

const (
	// Install installs all dependencies of the project.
	Install Command = "install"
	// Run runs a script from package.json.
	Run Command = "run"
	// Exec runs a binary provided by a package.
	Exec Command = "exec"
)

// Intent describes what to do.
type Intent struct {
	Command Command
	// Packages holds the binary name for Exec.
	Packages []string
	// Script is the package.json script for Run.
	Script string
	// Args are passed to the script or binary.
	Args []string
}

// Args returns the executable followed by its arguments for client.
func Args(client string, intent Intent) ([]string, error) {
	switch client {
	case "npm", "yarn", "pnpm":
	default:
		return nil, fmt.Errorf("unsupported npm client: %s", client)
	}

	switch intent.Command {
	case Install:
		switch client {
		case "npm":
			return []string{"npm", "i"}, nil
		case "yarn":
			return []string{"yarn", "install", "--non-interactive"}, nil
		default:
			return []string{"pnpm", "install"}, nil
		}

	case Run:
		if intent.Script == "" {
			return nil, fmt.Errorf("run requires a script name")
		}
		args := []string{client, "run", intent.Script}
		if len(intent.Args) > 0 {
			if client == "npm" {
				args = append(args, "--")
			}
			args = append(args, intent.Args...)
		}
		return args, nil

	case Exec:
		if len(intent.Packages) == 0 {
			return nil, fmt.Errorf("exec requires a binary name")
		}
		var args []string
		switch client {
		case "npm":
			args = []string{"npx", "--no-install", intent.Packages[0]}
		case "yarn":
			args = []string{"yarn", "run", intent.Packages[0]}
		default:
			args = []string{"pnpm", "exec", intent.Packages[0]}
		}
		return append(args, intent.Args...), nil
	}

	return nil, fmt.Errorf("unsupported package manager command: %s", intent.Command)
}
