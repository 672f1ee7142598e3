package desktop

import (
	"regexp"
	"strings"
)

var fieldCodePattern = regexp.MustCompile(`%[fFuUdDnNickvm]`)

// StripFieldCodes removes Exec field codes (%f, %U, %i, ...) so the command
// can be handed to a shell. "%%" becomes a literal percent sign.
func StripFieldCodes(exec string) string {
	const placeholder = "\x00"
	cleaned := strings.ReplaceAll(exec, "%%", placeholder)
	cleaned = fieldCodePattern.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, placeholder, "%")
	return strings.Join(strings.Fields(cleaned), " ")
}
