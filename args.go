package web2pdf

import (
	"fmt"
	"strings"
)

// Window size presets accepted by Converter.SetWindowPreset.
const (
	PresetSVGA   = "SVGA 800×600"
	PresetXGA    = "XGA 1024×768"
	PresetHD     = "HD 1366×768"
	PresetFullHD = "Full HD 1920×1080"
	PresetQHD    = "QHD 2560×1440"
	Preset4K     = "4K UHD 3840×2160"
)

// windowPresets maps preset names to --window-size values.
var windowPresets = map[string]string{
	PresetSVGA:   "800,600",
	PresetXGA:    "1024,768",
	PresetHD:     "1366,768",
	PresetFullHD: "1920,1080",
	PresetQHD:    "2560,1440",
	Preset4K:     "3840,2160",
}

// argEntry is one launch switch. Value-bearing entries render as
// --name=value, bare entries as --name.
type argEntry struct {
	name     string
	value    string
	hasValue bool
}

// ArgSet is an ordered, name-deduplicated collection of launch switches
// for the rendering engine. Names compare case-insensitively. Once the
// engine process is live, value-bearing mutations fail with
// ErrSessionStarted; the set is effectively frozen for the lifetime of
// the process.
type ArgSet struct {
	entries []argEntry

	// live reports whether the engine process is currently running.
	// Set by the owning converter; nil means never live.
	live func() bool
}

// newArgSet creates an ArgSet with the baseline switches every session
// starts from. Port 0 asks the engine to choose an ephemeral
// remote-debugging port, announced on its diagnostic stream.
func newArgSet() *ArgSet {
	a := &ArgSet{}
	a.append("headless", "", false)
	a.append("disable-gpu", "", false)
	a.append("disable-extensions", "", false)
	a.append("disable-background-timer-throttling", "", false)
	a.append("disable-renderer-backgrounding", "", false)
	a.append("no-first-run", "", false)
	a.append("no-default-browser-check", "", false)
	a.append("window-size", "1280,1024", true)
	a.append("remote-debugging-port", "0", true)
	return a
}

// Set adds a bare switch if absent. Adding an already-present name is a
// no-op, regardless of whether the existing entry carries a value.
func (a *ArgSet) Set(name string) {
	if _, ok := a.find(name); ok {
		return
	}
	a.append(name, "", false)
}

// SetValue adds or replaces a value-bearing switch. Fails with
// ErrSessionStarted if the engine process is running.
func (a *ArgSet) SetValue(name, value string) error {
	if a.live != nil && a.live() {
		return fmt.Errorf("%w: cannot change switch %q", ErrSessionStarted, name)
	}
	if i, ok := a.find(name); ok {
		a.entries[i].value = value
		a.entries[i].hasValue = true
		return nil
	}
	a.append(name, value, true)
	return nil
}

// Remove deletes a switch if present; no-op otherwise.
func (a *ArgSet) Remove(name string) {
	if i, ok := a.find(name); ok {
		a.entries = append(a.entries[:i], a.entries[i+1:]...)
	}
}

// Value returns the value of a switch and whether it is present with a
// value.
func (a *ArgSet) Value(name string) (string, bool) {
	if i, ok := a.find(name); ok && a.entries[i].hasValue {
		return a.entries[i].value, true
	}
	return "", false
}

// List renders the set as command-line arguments in insertion order.
func (a *ArgSet) List() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		if e.hasValue {
			out = append(out, "--"+e.name+"="+e.value)
		} else {
			out = append(out, "--"+e.name)
		}
	}
	return out
}

// Len returns the number of switches in the set.
func (a *ArgSet) Len() int { return len(a.entries) }

func (a *ArgSet) find(name string) (int, bool) {
	for i, e := range a.entries {
		if strings.EqualFold(e.name, name) {
			return i, true
		}
	}
	return -1, false
}

func (a *ArgSet) append(name, value string, hasValue bool) {
	a.entries = append(a.entries, argEntry{
		name:     strings.TrimLeft(name, "-"),
		value:    value,
		hasValue: hasValue,
	})
}

// windowSizeValue validates explicit dimensions and renders the
// --window-size value.
func windowSizeValue(width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: window size %dx%d (dimensions must be positive)", ErrInvalidArgument, width, height)
	}
	return fmt.Sprintf("%d,%d", width, height), nil
}

// windowPresetValue resolves a named preset to the --window-size value.
func windowPresetValue(preset string) (string, error) {
	if v, ok := windowPresets[preset]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown window preset %q", ErrInvalidArgument, preset)
}

// splitDomainUser splits a DOMAIN\user credential into its parts.
// Input without a backslash yields an empty domain.
func splitDomainUser(s string) (domain, user string) {
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}
