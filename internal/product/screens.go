package product

import (
	"context"
	"errors"
	"html/template"
	"strconv"

	"github.com/odyssey-erp/productmaster/internal/overlay"
	"github.com/odyssey-erp/productmaster/internal/screen"
)

// ErrInvalidID is returned when a screen is asked to act on a missing or
// malformed identifier.
var ErrInvalidID = errors.New("product: invalid identifier")

// DeletePrompt describes the confirmation shown before a delete.
type DeletePrompt struct {
	ID     int64
	Name   string
	Code   string
	Action string
}

// Confirmations renders overlay content for delete prompts.
type Confirmations interface {
	DeleteConfirmation(ctx context.Context, prompt DeletePrompt) (template.HTML, error)
}

func openDeletePrompt(ctx context.Context, confirm Confirmations, prompt DeletePrompt) error {
	content, err := confirm.DeleteConfirmation(ctx, prompt)
	if err != nil {
		return err
	}
	overlay.MustControls(ctx).Open(content)
	return nil
}

// Screens bundles the controllers of one shell.
type Screens struct {
	List   *ListScreen
	Detail *DetailScreen
	Create *CreateScreen
	Edit   *EditScreen
}

// NewScreens wires fresh controllers over ops.
func NewScreens(ops Operations, confirm Confirmations) *Screens {
	return &Screens{
		List:   &ListScreen{ops: ops, confirm: confirm, state: screen.NewMachine[[]Product]()},
		Detail: &DetailScreen{ops: ops, confirm: confirm, state: screen.NewMachine[Product]()},
		Create: &CreateScreen{ops: ops},
		Edit:   &EditScreen{ops: ops, state: screen.NewMachine[Product]()},
	}
}

// ListScreen shows one page of products.
type ListScreen struct {
	ops     Operations
	confirm Confirmations
	state   *screen.Machine[[]Product]
}

// Mount searches with params and returns the state for that window. A newer
// mount of the same window wins; a mount of another window never replaces
// the result returned here.
func (s *ListScreen) Mount(ctx context.Context, params SearchParams) screen.State[[]Product] {
	params = params.Normalize()
	t := s.state.BeginFor(ListQuery(params))
	products, err := s.ops.Search(ctx, params)
	return s.state.Settle(t, products, len(products) == 0, err)
}

// State returns the current state without fetching.
func (s *ListScreen) State() screen.State[[]Product] {
	return s.state.Snapshot()
}

// RequestDelete opens the confirmation overlay for id. The confirm action
// carries params so the list returns to the same window.
func (s *ListScreen) RequestDelete(ctx context.Context, id int64, params SearchParams) error {
	prompt := DeletePrompt{ID: id, Action: deleteRoute(id) + "?" + listScope(params).Encode()}
	if snap := s.state.Snapshot(); snap.IsLoaded() {
		for _, p := range snap.Data {
			if p.ID == id {
				prompt.Name, prompt.Code = p.Name, p.Code
				break
			}
		}
	}
	return openDeletePrompt(ctx, s.confirm, prompt)
}

// ConfirmDelete closes the overlay, deletes id and drops it from the held
// page. The caller re-mounts the list to refill it.
func (s *ListScreen) ConfirmDelete(ctx context.Context, id int64) error {
	overlay.MustControls(ctx).Close()
	if err := s.ops.Delete(ctx, id); err != nil {
		return err
	}
	s.state.Update(func(products []Product) ([]Product, bool) {
		kept := products[:0:0]
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		return kept, len(kept) == 0
	})
	return nil
}

// DetailScreen shows one product.
type DetailScreen struct {
	ops     Operations
	confirm Confirmations
	state   *screen.Machine[Product]
}

// Mount loads the product named by rawID. Missing or malformed identifiers
// leave the screen Idle without a fetch. The returned state never carries
// another product than the one requested.
func (s *DetailScreen) Mount(ctx context.Context, rawID string) screen.State[Product] {
	id, ok := ParseID(rawID)
	if !ok {
		return s.state.Reset()
	}
	t := s.state.BeginFor(strconv.FormatInt(id, 10))
	p, err := s.ops.FindByID(ctx, id)
	return s.state.Settle(t, p, false, err)
}

// State returns the current state without fetching.
func (s *DetailScreen) State() screen.State[Product] {
	return s.state.Snapshot()
}

// RequestDelete opens the confirmation overlay for the product named by
// rawID. Nothing happens for an invalid identifier.
func (s *DetailScreen) RequestDelete(ctx context.Context, rawID string) error {
	id, ok := ParseID(rawID)
	if !ok {
		return ErrInvalidID
	}
	prompt := DeletePrompt{ID: id, Action: deleteRoute(id)}
	if snap := s.state.Snapshot(); snap.IsLoaded() && snap.Data.ID == id {
		prompt.Name, prompt.Code = snap.Data.Name, snap.Data.Code
	}
	return openDeletePrompt(ctx, s.confirm, prompt)
}

// ConfirmDelete closes the overlay, deletes the product and navigates to the
// list.
func (s *DetailScreen) ConfirmDelete(ctx context.Context, rawID string, nav Navigator) error {
	overlay.MustControls(ctx).Close()
	id, ok := ParseID(rawID)
	if !ok {
		return ErrInvalidID
	}
	if err := s.ops.Delete(ctx, id); err != nil {
		return err
	}
	s.state.Reset()
	nav.Push(ListRoute)
	return nil
}

// CreateScreen submits new products.
type CreateScreen struct {
	ops Operations
}

// Submit validates draft and creates the product. Field errors block the
// remote call and are returned with a nil error.
func (s *CreateScreen) Submit(ctx context.Context, draft Draft, nav Navigator) (FieldErrors, error) {
	if errs := draft.Validate(); errs != nil {
		return errs, nil
	}
	if err := s.ops.Create(ctx, draft.CreateParams()); err != nil {
		return nil, err
	}
	nav.Push(ListRoute)
	return nil, nil
}

// EditScreen edits an existing product.
type EditScreen struct {
	ops   Operations
	state *screen.Machine[Product]
}

// Mount loads the product to pre-fill the form.
func (s *EditScreen) Mount(ctx context.Context, rawID string) screen.State[Product] {
	id, ok := ParseID(rawID)
	if !ok {
		return s.state.Reset()
	}
	t := s.state.BeginFor(strconv.FormatInt(id, 10))
	p, err := s.ops.FindByID(ctx, id)
	return s.state.Settle(t, p, false, err)
}

// Submit validates draft and updates every field of the product, unit
// included, then navigates to its detail screen.
func (s *EditScreen) Submit(ctx context.Context, rawID string, draft Draft, nav Navigator) (FieldErrors, error) {
	id, ok := ParseID(rawID)
	if !ok {
		return nil, ErrInvalidID
	}
	if errs := draft.Validate(); errs != nil {
		return errs, nil
	}
	if err := s.ops.Update(ctx, draft.UpdateParams(id)); err != nil {
		return nil, err
	}
	nav.Push(DetailRoute(id))
	return nil, nil
}
