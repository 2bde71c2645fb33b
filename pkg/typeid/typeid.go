// Package typeid maps file extensions to macOS Uniform Type Identifiers.
// Windows addresses file types by extension directly and never consults
// this table.
package typeid

import "github.com/dibs-cli/dibs/pkg/types"

// extensionToUTI covers the extensions dibs supports. Lookups outside this
// set return not-found rather than erroring; callers decide how to react.
var extensionToUTI = map[string]string{
	"md":   "net.daringfireball.markdown",
	"txt":  "public.plain-text",
	"csv":  "public.comma-separated-values-text",
	"json": "public.json",
	"xml":  "public.xml",
	"yaml": "public.yaml",
	"html": "public.html",
	"pdf":  "com.adobe.pdf",
	"png":  "public.png",
	"jpg":  "public.jpeg",
	"rtf":  "public.rtf",
	"sh":   "public.shell-script",
}

var utiToExtension = func() map[string]string {
	m := make(map[string]string, len(extensionToUTI))
	for ext, uti := range extensionToUTI {
		m[uti] = ext
	}
	return m
}()

// ToTypeID returns the UTI for an extension (leading dot and case are
// ignored). The second return is false for unsupported extensions.
func ToTypeID(ext string) (string, bool) {
	uti, ok := extensionToUTI[types.NormalizeExtension(ext)]
	return uti, ok
}

// ToExtension returns the extension (without dot) registered for a UTI.
func ToExtension(uti string) (string, bool) {
	ext, ok := utiToExtension[uti]
	return ext, ok
}

// SupportedExtensions returns the extensions dibs knows a type identifier
// for, without dots, in no particular order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionToUTI))
	for ext := range extensionToUTI {
		exts = append(exts, ext)
	}
	return exts
}
