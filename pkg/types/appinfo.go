package types

import "strings"

// AppInfo carries validated application metadata produced by a platform
// handler's VerifyApplication. It is never persisted directly; its fields are
// copied into a Binding when the binding is created or updated.
type AppInfo struct {
	// Path is the resolved, cleaned absolute path the user pointed at
	// (the .app bundle on macOS, the executable on Windows).
	Path string

	// Name is the display name (e.g. "Visual Studio Code").
	Name string

	// BundleOrProgID is the bundle identifier on macOS or the ProgID dibs
	// will register on Windows. Empty when it could not be resolved;
	// SetDefault rejects an empty value, VerifyApplication does not.
	BundleOrProgID string

	// ExecutablePath is the concrete executable inside the bundle or
	// directory, when one was found.
	ExecutablePath string
}

// NormalizeExtension lowercases an extension and strips any leading dot,
// so ".MD", "md" and ".md" all compare equal.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
