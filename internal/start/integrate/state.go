package integrate

// GitState tracks whether git operations may run. Once disabled it stays
// disabled for the rest of the run.
type GitState struct {
	enabled bool
}

// NewGitState returns a state that is enabled only when git is wanted,
// installed and not already managing an enclosing directory.
func NewGitState(desired, installed bool, topLevel string) GitState {
	return GitState{enabled: desired && installed && topLevel == ""}
}

// Enabled reports whether git operations may run.
func (g GitState) Enabled() bool { return g.enabled }

// Disable turns git operations off for good.
func (g *GitState) Disable() { g.enabled = false }

// LinkState keeps both signals that make a project count as linked.
type LinkState struct {
	// AppIDSupplied is set when the plan carries a remote app id.
	AppIDSupplied bool
	// LinkStepRan is set when the link step completed.
	LinkStepRan bool
}

// Confirmed reports whether either signal is set.
func (l LinkState) Confirmed() bool {
	return l.AppIDSupplied || l.LinkStepRan
}

// State is the mutable orchestration state of one run.
type State struct {
	// Capacitor and Cordova are nil while no choice has been made.
	Capacitor *bool
	Cordova   *bool
	Git       GitState
	Link      LinkState
}

// CapacitorEnabled reports whether Capacitor was chosen.
func (s *State) CapacitorEnabled() bool { return s.Capacitor != nil && *s.Capacitor }

// CordovaEnabled reports whether Cordova was chosen.
func (s *State) CordovaEnabled() bool { return s.Cordova != nil && *s.Cordova }

func boolPtr(b bool) *bool { return &b }

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return boolPtr(*b)
}
