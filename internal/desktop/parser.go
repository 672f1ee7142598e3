package desktop

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/quantmind-br/appseek/internal/core"
	"github.com/spf13/afero"
)

// SectionName is the section every descriptor must carry
const SectionName = "Desktop Entry"

// Required keys, in the order they are checked
const (
	KeyName    = "Name"
	KeyComment = "Comment"
	KeyIcon    = "Icon"
	KeyExec    = "Exec"
)

var requiredKeys = []string{KeyName, KeyComment, KeyIcon, KeyExec}

var _ core.EntryParser = (*Parser)(nil)

// Parser classifies discovered paths and builds candidate entries
type Parser struct {
	fs afero.Fs
}

// NewParser creates a parser reading descriptors from fs
func NewParser(fs afero.Fs) *Parser {
	return &Parser{fs: fs}
}

// Parse turns a path into an entry. Paths with the desktop extension are read
// as descriptors; everything else is treated as a bare executable.
func (p *Parser) Parse(path string) (*core.CandidateEntry, error) {
	if !utf8.ValidString(path) || strings.ContainsRune(path, 0) {
		return nil, core.NewParseError(path, core.ErrEncoding, nil)
	}

	if filepath.Ext(path) == ".desktop" {
		return p.parseDescriptor(path)
	}
	return parseBinary(path)
}

func (p *Parser) parseDescriptor(path string) (*core.CandidateEntry, error) {
	file, err := LoadSections(p.fs, path)
	if err != nil {
		return nil, err
	}

	section, err := file.GetSection(SectionName)
	if err != nil {
		return nil, core.NewParseError(path, core.ErrSectionMissing, nil)
	}

	values := make(map[string]string, len(requiredKeys))
	for _, key := range requiredKeys {
		if !section.HasKey(key) {
			return nil, core.FieldMissing(path, key)
		}
		values[key] = strings.TrimSpace(section.Key(key).String())
	}

	// Name and Exec back the non-empty invariant
	if values[KeyName] == "" {
		return nil, core.FieldMissing(path, KeyName)
	}
	if values[KeyExec] == "" {
		return nil, core.FieldMissing(path, KeyExec)
	}

	return core.NewDesktopEntry(
		values[KeyName],
		values[KeyComment],
		values[KeyIcon],
		values[KeyExec],
		path,
	), nil
}

func parseBinary(path string) (*core.CandidateEntry, error) {
	base := filepath.Base(path)
	if path == "" || base == "/" || base == "." || base == ".." {
		return nil, core.NewParseError(path, core.ErrWrongFileType, nil)
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}

	return core.NewBinaryEntry(stem, path), nil
}
