// Package checkstyle renders reports as checkstyle XML, the format most CI
// annotation tools accept.
package checkstyle

import (
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/arthur-debert/rulelint/pkg/report"
)

// Version is the checkstyle format version written to the root element
const Version = "4.3"

// SourcePrefix prefixes rule names in the source attribute
const SourcePrefix = "rulelint."

// Renderer writes checkstyle XML
type Renderer struct {
	output io.Writer
}

// New creates a new checkstyle renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderReport writes one file element per target. Findings carry no line
// numbers, so the line attribute is omitted.
func (r *Renderer) RenderReport(rep *report.Report) error {
	doc := newDocument()
	root := doc.Root()

	for _, t := range rep.Targets {
		file := root.CreateElement("file")
		file.CreateAttr("name", t.Path)
		for _, rr := range t.Rules {
			for _, f := range rr.Findings {
				e := file.CreateElement("error")
				e.CreateAttr("severity", string(f.Severity))
				e.CreateAttr("message", f.Message)
				e.CreateAttr("source", SourcePrefix+rr.Rule)
			}
		}
	}
	for _, me := range rep.MatchErrors {
		file := root.CreateElement("file")
		file.CreateAttr("name", me.Target)
		e := file.CreateElement("error")
		e.CreateAttr("severity", "error")
		e.CreateAttr("message", me.Message)
		e.CreateAttr("source", SourcePrefix+"match")
	}
	return write(doc, r.output)
}

// RenderError writes an error as a file-less checkstyle error
func (r *Renderer) RenderError(err error) error {
	doc := newDocument()
	e := doc.Root().CreateElement("error")
	e.CreateAttr("severity", "error")
	e.CreateAttr("message", err.Error())
	e.CreateAttr("source", SourcePrefix+"internal")
	return write(doc, r.output)
}

// RenderMessage writes msg as an XML comment
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintf(r.output, "<!-- %s -->\n", msg)
	return err
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", Version)
	return doc
}

func write(doc *etree.Document, w io.Writer) error {
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
