// Package assoc reads and writes the Windows DefaultAppAssociations XML
// schema, the format Dism exports and group policy consumes. Exporting
// lets a dibs binding set be applied machine-wide by an administrator;
// importing seeds pending bindings from an existing deployment file.
package assoc

import (
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/types"
)

// Association is one <Association> element.
type Association struct {
	Extension string
	ProgID    string
	AppName   string
}

// Export writes bindings as a DefaultAppAssociations document. Bindings
// without a ProgID fall back to the dibs naming scheme so the file is
// always applicable.
func Export(w io.Writer, bindings []types.Binding) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("DefaultAssociations")
	for _, b := range bindings {
		ext := types.NormalizeExtension(b.Extension)
		progID := b.BundleOrProgID
		if progID == "" {
			progID = "dibs." + ext
		}

		el := root.CreateElement("Association")
		el.CreateAttr("Identifier", "."+ext)
		el.CreateAttr("ProgId", progID)
		el.CreateAttr("ApplicationName", b.AppName)
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "could not write associations XML")
	}
	return nil
}

// Parse reads a DefaultAppAssociations document.
func Parse(r io.Reader) ([]Association, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "could not parse associations XML")
	}

	root := doc.SelectElement("DefaultAssociations")
	if root == nil {
		return nil, errors.New(errors.ErrInvalidInput,
			"missing <DefaultAssociations> root element")
	}

	var out []Association
	for _, el := range root.SelectElements("Association") {
		identifier := el.SelectAttrValue("Identifier", "")
		progID := el.SelectAttrValue("ProgId", "")
		if identifier == "" || !strings.HasPrefix(identifier, ".") {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"association has an invalid Identifier %q", identifier)
		}
		out = append(out, Association{
			Extension: types.NormalizeExtension(identifier),
			ProgID:    progID,
			AppName:   el.SelectAttrValue("ApplicationName", ""),
		})
	}
	return out, nil
}
