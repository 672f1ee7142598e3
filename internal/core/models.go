package core

import (
	"path/filepath"
	"strings"
	"sync"
)

// DefaultIconName is the logical icon used for bare executables
const DefaultIconName = "terminal"

// EntryKind tells where a candidate entry came from
type EntryKind string

const (
	KindDesktop EntryKind = "desktop"
	KindBinary  EntryKind = "bin"
)

// CandidateEntry is a single launchable target.
//
// Every field except the icon path is fixed at construction. The icon path
// moves from unset to resolved at most once.
type CandidateEntry struct {
	DisplayName string `json:"name"`
	Description string `json:"description"`
	Command     string `json:"command"`
	IconName    string `json:"icon_name"`
	SourcePath  string `json:"source_path,omitempty"`

	iconMu   sync.RWMutex
	iconPath string
	iconSet  bool
}

// NewDesktopEntry builds an entry backed by a desktop descriptor
func NewDesktopEntry(name, comment, icon, exec, source string) *CandidateEntry {
	return &CandidateEntry{
		DisplayName: name,
		Description: comment,
		Command:     exec,
		IconName:    icon,
		SourcePath:  source,
	}
}

// NewBinaryEntry builds an entry for a bare executable
func NewBinaryEntry(name, path string) *CandidateEntry {
	return &CandidateEntry{
		DisplayName: name,
		Description: path,
		Command:     path,
		IconName:    DefaultIconName,
	}
}

// HasSource reports whether the entry originated from a desktop descriptor
func (e *CandidateEntry) HasSource() bool {
	return e.SourcePath != ""
}

// Kind returns the entry origin
func (e *CandidateEntry) Kind() EntryKind {
	if e.HasSource() {
		return KindDesktop
	}
	return KindBinary
}

// SourceStem returns the descriptor file name without extension, or "" for binaries
func (e *CandidateEntry) SourceStem() string {
	if !e.HasSource() {
		return ""
	}
	base := filepath.Base(e.SourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SetIconPath records the resolved icon path. Only the first call has an effect;
// it reports whether this call performed the transition.
func (e *CandidateEntry) SetIconPath(path string) bool {
	if path == "" {
		return false
	}
	e.iconMu.Lock()
	defer e.iconMu.Unlock()
	if e.iconSet {
		return false
	}
	e.iconPath = path
	e.iconSet = true
	return true
}

// IconPath returns the resolved icon path, if any
func (e *CandidateEntry) IconPath() (string, bool) {
	e.iconMu.RLock()
	defer e.iconMu.RUnlock()
	return e.iconPath, e.iconSet
}

// Valid reports whether the entry satisfies the non-empty name and command invariant
func (e *CandidateEntry) Valid() bool {
	return strings.TrimSpace(e.DisplayName) != "" && strings.TrimSpace(e.Command) != ""
}

// RankedResult is a per-query projection of a cache entry.
// It is never written back into a cache.
type RankedResult struct {
	Entry          *CandidateEntry
	Score          int
	RawScore       int
	MatchedIndices []int
	Shard          int
	Seq            int
}

// ResultView is the flattened form handed to output sinks
type ResultView struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Command        string `json:"command"`
	IconPath       string `json:"icon_path,omitempty"`
	Source         string `json:"source,omitempty"`
	Score          int    `json:"score"`
	MatchedIndices []int  `json:"matched_indices"`
}

// View flattens a ranked result for display or JSON encoding
func (r RankedResult) View() ResultView {
	iconPath, _ := r.Entry.IconPath()
	indices := r.MatchedIndices
	if indices == nil {
		indices = []int{}
	}
	return ResultView{
		Name:           r.Entry.DisplayName,
		Description:    r.Entry.Description,
		Command:        r.Entry.Command,
		IconPath:       iconPath,
		Source:         r.Entry.SourcePath,
		Score:          r.Score,
		MatchedIndices: indices,
	}
}

// Exit codes
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitInvalidArgs = 2
	ExitNoMatch     = 3
	ExitInterrupted = 130
)
