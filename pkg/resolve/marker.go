package resolve

import "strings"

// Marker identifies edited variants by file name prefix
type Marker struct {
	// EditedPrefix starts the name of an edited copy (e.g. IMG_E0001.jpg)
	EditedPrefix string
	// OriginalPrefix replaces EditedPrefix to obtain the original's name
	OriginalPrefix string
}

// DefaultMarker matches the naming used by iOS devices
var DefaultMarker = Marker{EditedPrefix: "IMG_E", OriginalPrefix: "IMG_"}

// IsEdited reports whether name is an edited variant
func (m Marker) IsEdited(name string) bool {
	return m.EditedPrefix != "" && strings.HasPrefix(name, m.EditedPrefix)
}

// OriginalOf returns the original counterpart of an edited name
func (m Marker) OriginalOf(name string) string {
	return m.OriginalPrefix + strings.TrimPrefix(name, m.EditedPrefix)
}

// EditedOf returns the edited counterpart of an original name, or "" if the
// name does not carry the original prefix
func (m Marker) EditedOf(name string) string {
	if !strings.HasPrefix(name, m.OriginalPrefix) {
		return ""
	}
	return m.EditedPrefix + strings.TrimPrefix(name, m.OriginalPrefix)
}
