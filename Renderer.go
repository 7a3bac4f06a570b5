package mvc

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

// LayoutName is the name of the template every rendered view is wrapped in.
const LayoutName = "layout.html"

// Renderer executes named views and wraps their output in a shared layout.
// All templates are parsed once at construction; rendering never touches the
// filesystem.  Renderer is safe for concurrent use once constructed.
type Renderer struct {
	templates *template.Template
}

// layoutContext is what the layout template executes against.  Data is the
// same value the view was executed with, so the layout can reach things like
// the page title.  Content carries the captured view output and is not
// re-escaped.
type layoutContext struct {
	Data    interface{}
	Content template.HTML
}

// NewRenderer parses every *.html template in the provided filesystem,
// which must include one named layout.html.  The funcs map may be nil.
func NewRenderer(fsys fs.FS, funcs template.FuncMap) (*Renderer, error) {
	templates, err := template.New("").Funcs(funcs).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	if templates.Lookup(LayoutName) == nil {
		return nil, fmt.Errorf("no layout template named %q was loaded", LayoutName)
	}

	return &Renderer{templates: templates}, nil
}

// Render executes the named view with the provided data, captures its output,
// then executes the layout with the captured output as the page content and
// the same data still bound.  Nothing is written to w unless both templates
// execute successfully.
func (rn *Renderer) Render(w io.Writer, view string, data interface{}) error {
	tpl := rn.templates.Lookup(view)
	if tpl == nil {
		return fmt.Errorf("no view named %q was loaded", view)
	}

	captured := &bytes.Buffer{}
	err := tpl.Execute(captured, data)
	if err != nil {
		return fmt.Errorf("executing view %q: %w", view, err)
	}

	doc := &bytes.Buffer{}
	err = rn.templates.Lookup(LayoutName).Execute(doc, &layoutContext{
		Data:    data,
		Content: template.HTML(captured.String()),
	})
	if err != nil {
		return fmt.Errorf("executing layout for view %q: %w", view, err)
	}

	_, err = w.Write(doc.Bytes())
	return err
}
