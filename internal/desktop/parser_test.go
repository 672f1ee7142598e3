package desktop

import (
	"errors"
	"testing"

	"github.com/quantmind-br/appseek/internal/core"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firefoxDesktop = `# comment line
[Desktop Entry]
Type=Application
Name=Firefox
Name[de]=Firefox Webbrowser
Comment=Browse the World Wide Web
Icon=firefox
Exec=firefox %u
Categories=Network;WebBrowser;

[Desktop Action new-window]
Name=New Window
Exec=firefox --new-window %u
`

func newTestParser(t *testing.T, files map[string]string) *Parser {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return NewParser(fs)
}

func TestParse_Descriptor(t *testing.T) {
	p := newTestParser(t, map[string]string{"/apps/firefox.desktop": firefoxDesktop})

	entry, err := p.Parse("/apps/firefox.desktop")
	require.NoError(t, err)

	assert.Equal(t, "Firefox", entry.DisplayName)
	assert.Equal(t, "Browse the World Wide Web", entry.Description)
	assert.Equal(t, "firefox", entry.IconName)
	assert.Equal(t, "firefox %u", entry.Command)
	assert.Equal(t, "/apps/firefox.desktop", entry.SourcePath)
	assert.True(t, entry.HasSource())
}

func TestParse_DescriptorValuesVerbatim(t *testing.T) {
	content := `[Desktop Entry]
Name=Tool; Extra
Comment=Does # things
Icon=/opt/tool/icon.png
Exec="/opt/My Tool/run" --flag \
`
	p := newTestParser(t, map[string]string{"/apps/tool.desktop": content})

	entry, err := p.Parse("/apps/tool.desktop")
	require.NoError(t, err)

	assert.Equal(t, "Tool; Extra", entry.DisplayName)
	assert.Equal(t, "Does # things", entry.Description)
	assert.Equal(t, `"/opt/My Tool/run" --flag \`, entry.Command)
}

func TestParse_DescriptorFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    error
		field   string
	}{
		{
			name:    "missing section",
			content: "[Other]\nName=X\n",
			kind:    core.ErrSectionMissing,
		},
		{
			name:    "missing Name",
			content: "[Desktop Entry]\nComment=c\nIcon=i\nExec=e\n",
			kind:    core.ErrFieldMissing,
			field:   KeyName,
		},
		{
			name:    "missing Comment",
			content: "[Desktop Entry]\nName=n\nIcon=i\nExec=e\n",
			kind:    core.ErrFieldMissing,
			field:   KeyComment,
		},
		{
			name:    "missing Icon",
			content: "[Desktop Entry]\nName=n\nComment=c\nExec=e\n",
			kind:    core.ErrFieldMissing,
			field:   KeyIcon,
		},
		{
			name:    "missing Exec",
			content: "[Desktop Entry]\nName=n\nComment=c\nIcon=i\n",
			kind:    core.ErrFieldMissing,
			field:   KeyExec,
		},
		{
			name:    "empty Exec",
			content: "[Desktop Entry]\nName=n\nComment=c\nIcon=i\nExec=\n",
			kind:    core.ErrFieldMissing,
			field:   KeyExec,
		},
		{
			name:    "key only in another section",
			content: "[Desktop Entry]\nName=n\nComment=c\nIcon=i\n[Desktop Action x]\nExec=e\n",
			kind:    core.ErrFieldMissing,
			field:   KeyExec,
		},
		{
			name:    "malformed structure",
			content: "[Desktop Entry\nName=n\n",
			kind:    core.ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(t, map[string]string{"/apps/app.desktop": tt.content})

			entry, err := p.Parse("/apps/app.desktop")
			assert.Nil(t, entry)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)

			var pe *core.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestParse_DescriptorNotFound(t *testing.T) {
	p := newTestParser(t, nil)

	_, err := p.Parse("/apps/gone.desktop")
	assert.ErrorIs(t, err, core.ErrFileNotFound)
}

func TestParse_Binary(t *testing.T) {
	// bare executables are never read, so the filesystem may be empty
	p := newTestParser(t, nil)

	tests := []struct {
		path string
		name string
	}{
		{"/usr/bin/firefox-bin", "firefox-bin"},
		{"/usr/bin/htop", "htop"},
		{"/usr/bin/python3.11", "python3"},
		{"/usr/bin/.hidden", ".hidden"},
		{"relative/tool", "tool"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			entry, err := p.Parse(tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.name, entry.DisplayName)
			assert.Equal(t, tt.path, entry.Command)
			assert.Equal(t, tt.path, entry.Description)
			assert.Equal(t, core.DefaultIconName, entry.IconName)
			assert.False(t, entry.HasSource())
		})
	}
}

func TestParse_BinaryFailures(t *testing.T) {
	p := newTestParser(t, nil)

	_, err := p.Parse("/usr/bin/\xff\xfe")
	assert.ErrorIs(t, err, core.ErrEncoding)

	_, err = p.Parse("")
	assert.ErrorIs(t, err, core.ErrWrongFileType)

	_, err = p.Parse("/")
	assert.ErrorIs(t, err, core.ErrWrongFileType)
}

func TestStripFieldCodes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"firefox %u", "firefox"},
		{"code --new-window %F", "code --new-window"},
		{"app %i %c %k", "app"},
		{"printf 100%%", "printf 100%"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFieldCodes(tt.in))
		})
	}
}
