package overlay

import (
	"bytes"
	"context"
	"html/template"
)

// CloseRoute is the endpoint behind the overlay close control.
const CloseRoute = "/overlay/close"

// Fragments renders named partial templates.
type Fragments interface {
	Fragment(name string, data any) (template.HTML, error)
}

// Renderer draws the overlay wrapper around the active content.
type Renderer struct {
	fragments Fragments
	template  string
}

// NewRenderer builds a Renderer using the given wrapper template.
func NewRenderer(fragments Fragments, wrapperTemplate string) *Renderer {
	return &Renderer{fragments: fragments, template: wrapperTemplate}
}

type wrapperData struct {
	Content    template.HTML
	CloseRoute string
	ReturnTo   string
	CSRFToken  string
}

// Render returns the overlay markup for ctx. Hidden overlays render nothing.
func (r *Renderer) Render(ctx context.Context, returnTo, csrfToken string) (template.HTML, error) {
	state := ContentFrom(ctx)
	if state.Hidden() {
		return "", nil
	}
	data := wrapperData{
		Content:    state.Content,
		CloseRoute: CloseRoute,
		ReturnTo:   returnTo,
		CSRFToken:  csrfToken,
	}
	if r == nil || r.fragments == nil {
		return fallbackWrapper(data)
	}
	return r.fragments.Fragment(r.template, data)
}

var fallback = template.Must(template.New("overlay").Parse(
	`<div class="overlay" role="dialog" aria-modal="true"><form method="post" action="{{.CloseRoute}}"><input type="hidden" name="csrf_token" value="{{.CSRFToken}}"><input type="hidden" name="return" value="{{.ReturnTo}}"><button type="submit" class="overlay-close">Close</button></form>{{.Content}}</div>`,
))

func fallbackWrapper(data wrapperData) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fallback.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
