package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tacogips/ionstart/internal/app"
	"github.com/tacogips/ionstart/internal/project"
)

const serveLong = `Start a local development server for the project in the current directory.

The server is the one of the project's framework (ng serve, react-scripts
start, vue-cli-service serve, ionic-app-scripts serve) or the ionic:serve
script of custom projects. Arguments after -- are passed to it.

Examples:
  ionstart serve
  ionstart serve --external
  ionstart serve --port 8101 --no-open
  ionstart serve -- --prod`

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [-- <args>]",
	Short: "Start a local dev server for app dev/testing",
	Long:  serveLong,
	RunE:  runServe,
}

// labCmd is serve with --lab set.
var labCmd = &cobra.Command{
	Use:    "lab [-- <args>]",
	Short:  "Start Ionic Lab for multi-platform dev/testing",
	Long:   serveLong,
	Hidden: true,
	RunE:   runServe,
}

// serveFlagValues holds the flags of one serve-like command.
type serveFlagValues struct {
	host          string
	port          int
	external      bool
	noOpen        bool
	noLiveReload  bool
	noProxy       bool
	lab           bool
	labHost       string
	labPort       int
	browser       string
	browserOption string

	noLiveReloadOld bool
	noBrowserOld    bool
	noProxyOld      bool
	noOpenShort     bool
	noProxyShort    bool
}

var (
	serveValues = &serveFlagValues{}
	labValues   = &serveFlagValues{}
)

func init() {
	addServeFlags(serveCmd.Flags(), serveValues)
	addServeFlags(labCmd.Flags(), labValues)
}

func addServeFlags(f *pflag.FlagSet, v *serveFlagValues) {
	f.StringVar(&v.host, "host", project.DefaultServeHost, "Use specific host for the dev server")
	f.IntVarP(&v.port, "port", "p", project.DefaultServePort, "Use specific port for the dev server")
	f.BoolVar(&v.external, "external", false, "Host dev server on all network interfaces (i.e. --host=0.0.0.0)")
	f.BoolVar(&v.noOpen, "no-open", false, "Do not open a browser window")
	f.BoolVar(&v.noLiveReload, "no-livereload", false, "Do not spin up dev server--just serve files")
	f.BoolVar(&v.noProxy, "no-proxy", false, "Do not add proxies")
	f.BoolVarP(&v.lab, "lab", "l", false, "Test your apps on multiple platform types in the browser")
	f.StringVar(&v.labHost, "lab-host", project.DefaultServeHost, "Use specific host for Ionic Lab server")
	f.IntVar(&v.labPort, "lab-port", project.DefaultLabPort, "Use specific port for Ionic Lab server")
	f.StringVarP(&v.browser, "browser", "w", "", "Specifies the browser to use (safari, firefox, google chrome)")
	f.StringVarP(&v.browserOption, "browseroption", "o", "", "Specifies a path to open to (/#/tab/dash)")

	f.BoolVar(&v.noLiveReloadOld, "nolivereload", false, "")
	f.BoolVar(&v.noBrowserOld, "nobrowser", false, "")
	f.BoolVar(&v.noProxyOld, "noproxy", false, "")
	f.BoolVarP(&v.noOpenShort, "no-open-short", "b", false, "")
	f.BoolVarP(&v.noProxyShort, "no-proxy-short", "x", false, "")
	for _, name := range []string{"nolivereload", "nobrowser", "noproxy", "no-open-short", "no-proxy-short"} {
		_ = f.MarkHidden(name)
	}
}

// serveFlags converts parsed flag values into app.ServeFlags.
func serveFlags(v *serveFlagValues, lab bool, extra []string) app.ServeFlags {
	return app.ServeFlags{
		ServeOptions: project.ServeOptions{
			Host:          v.host,
			Port:          v.port,
			External:      v.external,
			Open:          !v.noOpen,
			LiveReload:    !v.noLiveReload,
			Proxy:         !v.noProxy,
			Lab:           v.lab,
			LabHost:       v.labHost,
			LabPort:       v.labPort,
			Browser:       v.browser,
			BrowserOption: v.browserOption,
			Extra:         extra,
		},
		NoLiveReloadOld: v.noLiveReloadOld,
		NoBrowserOld:    v.noBrowserOld,
		NoProxyOld:      v.noProxyOld,
		NoOpenShort:     v.noOpenShort,
		NoProxyShort:    v.noProxyShort,
		LabAlias:        lab,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}

	v, lab := serveValues, false
	if cmd.Name() == "lab" {
		v, lab = labValues, true
	}
	return app.Serve(cmd.Context(), env, serveFlags(v, lab, args))
}
