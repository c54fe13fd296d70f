package cli

// Common flag names and descriptions
const (
	// Flag names
	FlagConfig        = "config"
	FlagNoColor       = "no-color"
	FlagQuiet         = "quiet"
	FlagDebug         = "debug"
	FlagNoInteractive = "no-interactive"

	// Flag descriptions
	DescConfig        = "Directory holding config.json and .env (default ~/.ionic)"
	DescNoColor       = "Disable colored output"
	DescQuiet         = "Suppress non-error output"
	DescDebug         = "Enable debug logging"
	DescNoInteractive = "Disable interactive prompts"
)

// boolFlag returns a pointer to value when the flag was given, nil otherwise.
func boolFlag(changed, value bool) *bool {
	if !changed {
		return nil
	}
	return &value
}
