package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Rules holds the lexical vocabulary used to classify engine output. The
// defaults match the engine this bridge was built for; other engines can
// supply their own set from a JSON file.
type Rules struct {
	// BlockMarker begins a narrative block wherever it appears in a line.
	BlockMarker string `json:"block_marker"`

	// StatusPrefix and StatusSubstrings describe status lines: a line
	// starting with StatusPrefix and containing any of the substrings.
	StatusPrefix     string   `json:"status_prefix"`
	StatusSubstrings []string `json:"status_substrings"`

	// PromptPrefix marks an input prompt line, which terminates a block.
	PromptPrefix string `json:"prompt_prefix"`

	// SeverityMarkers are log severity tags that terminate a block.
	SeverityMarkers []string `json:"severity_markers"`

	// ErrorMarker tags a line as an error when present.
	ErrorMarker string `json:"error_marker"`

	// DiagnosticMarkers are engine-internal phrases routed to the debug
	// channel. The set is not exhaustive; unmatched diagnostic phrasing
	// falls through to the default debug routing.
	DiagnosticMarkers []string `json:"diagnostic_markers"`
}

// DefaultRules returns the rule set for the known engine vocabulary.
func DefaultRules() Rules {
	return Rules{
		BlockMarker:  "Dungeon Master:",
		StatusPrefix: "[",
		StatusSubstrings: []string{
			"HP:", "XP:",
			// Initiative tracker entries: "[X] Goblin (15) - Acted".
			"- Acted", "- CURRENT TURN", "- Waiting", "- Dead", "- Skipped",
		},
		PromptPrefix:    ">",
		SeverityMarkers: []string{"DEBUG:", "ERROR:", "WARNING:"},
		ErrorMarker:     "ERROR:",
		DiagnosticMarkers: []string{
			"Lightweight chat history updated",
			"System messages removed:",
			"User messages:",
			"Assistant messages:",
			"not found. Skipping",
			"not found. Returning None",
			"has an invalid JSON format",
			"Current Time:",
			"Time Advanced:",
			"New Time:",
			"Days Passed:",
			"Loading module areas",
			"Graph built:",
			"[OK] Loaded",
		},
	}
}

// LoadRules reads a rule set from the given JSON file. An empty path or a
// missing file yields the defaults.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRules(), nil
		}
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	if strings.TrimSpace(r.BlockMarker) == "" {
		return errors.New("block_marker is required")
	}
	if strings.TrimSpace(r.StatusPrefix) == "" {
		return errors.New("status_prefix is required")
	}
	if len(r.StatusSubstrings) == 0 {
		return errors.New("at least one status substring is required")
	}
	return nil
}

// isStatusLine reports whether a line has the status shape.
func (r Rules) isStatusLine(line string) bool {
	if !strings.HasPrefix(line, r.StatusPrefix) {
		return false
	}
	for _, sub := range r.StatusSubstrings {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// isDiagnostic reports whether a line matches a known diagnostic phrase.
func (r Rules) isDiagnostic(line string) bool {
	for _, marker := range r.DiagnosticMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// endsBlock reports whether a line terminates an open narrative block.
func (r Rules) endsBlock(line string) bool {
	for _, marker := range r.SeverityMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	if r.isDiagnostic(line) {
		return true
	}
	if r.isStatusLine(line) {
		return true
	}
	return r.PromptPrefix != "" && strings.HasPrefix(line, r.PromptPrefix)
}

// isError reports whether a line should be tagged as an error.
func (r Rules) isError(line string) bool {
	return r.ErrorMarker != "" && strings.Contains(line, r.ErrorMarker)
}
