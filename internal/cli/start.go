package cli

import (
	"github.com/spf13/cobra"

	"github.com/tacogips/ionstart/internal/app"
	"github.com/tacogips/ionstart/internal/start/catalog"
	"github.com/tacogips/ionstart/internal/start/schema"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [name] [template]",
	Short: "Create a new project",
	Long: `Create a new app from a starter template or a git repository.

The name is the human readable app name; a directory named after the
project id is created next to the current directory. The template is a
starter name (see --list) or the URL of a git repository to clone.

Examples:
  ionstart start
  ionstart start --list
  ionstart start myApp
  ionstart start "My App" blank --type=angular
  ionstart start "My App" tabs --capacitor
  ionstart start "Conference App" https://github.com/ionic-team/ionic-conference-app`,
	Args: cobra.MaximumNArgs(2),
	RunE: runStart,
}

// Start command flags
var (
	startList      bool
	startType      string
	startCordova   bool
	startCapacitor bool
	startNoDeps    bool
	startNoGit     bool
	startLink      bool
	startID        string
	startProjectID string
	startPackageID string
	startStartID   string
	startTag       string

	// Removed or deprecated.
	startV1          bool
	startV2          bool
	startAppName     string
	startDisplayName string
	startBundleID    string
)

func init() {
	f := startCmd.Flags()
	f.BoolVarP(&startList, "list", "l", false, "List available starter templates")
	f.StringVar(&startType, "type", "", "Type of project to start (e.g. angular, react, vue)")
	f.BoolVar(&startCordova, "cordova", false, "Include Cordova integration")
	f.BoolVar(&startCapacitor, "capacitor", false, "Include Capacitor integration")
	f.BoolVar(&startNoDeps, "no-deps", false, "Do not install npm/yarn dependencies")
	f.BoolVar(&startNoGit, "no-git", false, "Do not initialize a git repo")
	f.BoolVar(&startLink, "link", false, "Connect your new app to Ionic")
	f.StringVar(&startID, "id", "", "Specify an app ID from the Ionic Dashboard to link")
	f.StringVar(&startProjectID, "project-id", "", "Specify a slug for your app (used for the directory name and package name)")
	f.StringVar(&startPackageID, "package-id", "", "Specify the bundle ID/application ID for your app (reverse-DNS notation)")
	f.StringVar(&startStartID, "start-id", "", "Used by the Ionic app start experience to generate an associated app locally")
	f.StringVar(&startTag, "tag", catalog.DefaultTag, "Specify a tag to use for the starters")

	f.BoolVar(&startV1, "v1", false, "")
	f.BoolVar(&startV2, "v2", false, "")
	f.StringVar(&startAppName, "app-name", "", "")
	f.StringVar(&startDisplayName, "display-name", "", "")
	f.StringVar(&startBundleID, "bundle-id", "", "")

	for _, name := range []string{"start-id", "tag", "v1", "v2", "app-name", "display-name", "bundle-id"} {
		_ = f.MarkHidden(name)
	}
}

// startOptions collects the positional arguments and flags of start.
func startOptions(cmd *cobra.Command, args []string) app.StartOptions {
	var in schema.Inputs
	if len(args) > 0 {
		in.Name = args[0]
	}
	if len(args) > 1 {
		in.Template = args[1]
	}

	flags := cmd.Flags()
	return app.StartOptions{
		Inputs: in,
		Raw: schema.RawOptions{
			Type:        startType,
			Cordova:     boolFlag(flags.Changed("cordova"), startCordova),
			Capacitor:   boolFlag(flags.Changed("capacitor"), startCapacitor),
			NoDeps:      startNoDeps,
			NoGit:       startNoGit,
			Link:        startLink,
			ID:          startID,
			ProjectID:   startProjectID,
			PackageID:   startPackageID,
			StartID:     startStartID,
			Tag:         startTag,
			V1:          startV1,
			V2:          startV2,
			AppName:     startAppName,
			DisplayName: startDisplayName,
			BundleID:    startBundleID,
		},
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}

	if startList {
		return app.ListStarters(env)
	}

	_, err = app.Start(cmd.Context(), env, startOptions(cmd, args))
	return err
}
