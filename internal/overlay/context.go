package overlay

import (
	"context"
	"html/template"
)

// Controls is the mutator pair handed to any component that triggers the overlay.
type Controls interface {
	Open(content template.HTML)
	Close()
}

// ContentSource exposes the current overlay to the renderer.
type ContentSource interface {
	State() State
}

type controlsKey struct{}

type contentKey struct{}

// WithControls attaches the mutator pair to ctx.
func WithControls(ctx context.Context, controls Controls) context.Context {
	return context.WithValue(ctx, controlsKey{}, controls)
}

// ControlsFrom returns the mutator pair attached to ctx.
func ControlsFrom(ctx context.Context) (Controls, bool) {
	controls, ok := ctx.Value(controlsKey{}).(Controls)
	return controls, ok && controls != nil
}

// MustControls returns the mutator pair and panics when ctx was not produced
// inside an application shell.
func MustControls(ctx context.Context) Controls {
	controls, ok := ControlsFrom(ctx)
	if !ok {
		panic("overlay: controls requested outside of an application shell")
	}
	return controls
}

// WithContent attaches the read side of the overlay to ctx.
func WithContent(ctx context.Context, source ContentSource) context.Context {
	return context.WithValue(ctx, contentKey{}, source)
}

// ContentFrom returns the current overlay state carried by ctx, or Hidden when
// no source is attached.
func ContentFrom(ctx context.Context) State {
	source, ok := ctx.Value(contentKey{}).(ContentSource)
	if !ok || source == nil {
		return State{}
	}
	return source.State()
}
