package desktop

import (
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// loadOptions keep descriptor values verbatim: ';' lists, quotes and
// trailing backslashes are part of the value, keys are case sensitive.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	KeyValueDelimiters:      "=",
}

// LoadSections reads a key/value-by-section file. I/O failures wrap
// core.ErrFileNotFound; structural failures wrap core.ErrMalformed.
func LoadSections(fs afero.Fs, path string) (*ini.File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, core.NewParseError(path, core.ErrFileNotFound, err)
	}

	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, core.NewParseError(path, core.ErrMalformed, err)
	}

	return file, nil
}
