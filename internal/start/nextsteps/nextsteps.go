// Package nextsteps summarizes what to do after a project was created.
package nextsteps

import (
	"fmt"
	"strings"

	"github.com/tacogips/ionstart/internal/output"
)

const (
	DocsURL       = "https://ion.link/docs"
	EnterpriseURL = "https://ion.link/enterprise-edition"
)

// Steps returns the ordered next actions. Commands are highlighted with c.
func Steps(c output.Colors, projectDir string, cloned, linkConfirmed, capacitor bool) []string {
	kind := "new"
	if cloned {
		kind = "cloned"
	}

	native := fmt.Sprintf("Run %s to add a native iOS or Android project using Capacitor", c.Input("npx cap add"))
	resources := "cordova-res --skip-config --copy"
	if !capacitor {
		native = fmt.Sprintf("Run %s to add a native iOS or Android project using Cordova", c.Input("cordova platform add"))
		resources = "cordova-res"
	}

	steps := []string{
		fmt.Sprintf("Go to your %s project: %s", kind, c.Input("cd "+output.PrettyPath(projectDir))),
		fmt.Sprintf("Run %s within the app directory to see your app in the browser", c.Input("ionstart serve")),
		native,
		fmt.Sprintf("Generate your app icon and splash screens using %s", c.Input(resources)),
		fmt.Sprintf("Explore the Ionic docs for components, tutorials, and more: %s", c.Strong(DocsURL)),
		fmt.Sprintf("Building an enterprise app? Ionic has Enterprise Support and Features: %s", c.Strong(EnterpriseURL)),
	}
	if linkConfirmed {
		steps = append(steps, fmt.Sprintf("Push your code to Ionic Appflow to perform real-time updates, and more: %s", c.Input("git push ionic master")))
	}
	return steps
}

// Print writes steps as a bulleted list under a header.
func Print(log output.Logger, c output.Colors, steps []string) {
	var b strings.Builder
	b.WriteString(c.Strong("Your Ionic app is ready! Follow these next steps") + ":")
	for _, s := range steps {
		b.WriteString("\n - " + s)
	}
	log.Msg(b.String())
}
