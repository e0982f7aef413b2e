package product

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/productmaster/internal/overlay"
	"github.com/odyssey-erp/productmaster/internal/rpc"
	"github.com/odyssey-erp/productmaster/internal/screen"
	"github.com/odyssey-erp/productmaster/internal/shared"
	"github.com/odyssey-erp/productmaster/internal/shell"
	"github.com/odyssey-erp/productmaster/internal/view"
)

const screensSlot = "product.screens"

// Handler serves the product screens.
type Handler struct {
	logger    *slog.Logger
	ops       Operations
	templates *view.Engine
	csrf      *shared.CSRFManager
	overlays  *overlay.Renderer
}

// NewHandler builds a product handler.
func NewHandler(logger *slog.Logger, ops Operations, templates *view.Engine, csrf *shared.CSRFManager, overlays *overlay.Renderer) *Handler {
	return &Handler{logger: logger, ops: ops, templates: templates, csrf: csrf, overlays: overlays}
}

// MountRoutes registers the product routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/new", h.showCreateForm)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Get("/edit", h.showEditForm)
		r.Post("/edit", h.update)
		r.Post("/delete/request", h.requestDelete)
		r.Post("/delete", h.confirmDelete)
	})
}

func (h *Handler) screens(ctx context.Context) *Screens {
	sh := shell.FromContext(ctx)
	if sh == nil {
		return NewScreens(h.ops, h)
	}
	return shell.Load(sh, screensSlot, func() *Screens {
		return NewScreens(h.ops, h)
	})
}

// DeleteConfirmation renders the delete prompt shown in the overlay.
func (h *Handler) DeleteConfirmation(ctx context.Context, prompt DeletePrompt) (template.HTML, error) {
	token, err := h.csrf.EnsureToken(ctx, shared.SessionFromContext(ctx))
	if err != nil {
		return "", err
	}
	return h.templates.Fragment("partials/product_delete_confirm.html", map[string]any{
		"Prompt":    prompt,
		"CSRFToken": token,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	params := SearchParamsFromQuery(r.URL.Query())
	state := h.screens(r.Context()).List.Mount(r.Context(), params)

	data := map[string]any{
		"State":  state,
		"Params": params,
	}
	if params.Offset > 0 {
		data["Prev"] = ListQuery(params.Prev())
	}
	if state.IsLoaded() && len(state.Data) >= params.Limit {
		data["Next"] = ListQuery(params.Next())
	}
	status := h.stateStatus(data, state.Phase, state.Err, "search products")
	h.render(w, r, "pages/products_list.html", "Products", data, status)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	state := h.screens(r.Context()).Detail.Mount(r.Context(), raw)

	data := map[string]any{"State": state}
	status := h.stateStatus(data, state.Phase, state.Err, "find product")
	h.render(w, r, "pages/product_detail.html", "Product", data, status)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/product_form.html", "New product", createFormData(Draft{}, FieldErrors{}), http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	draft := DraftFromForm(r.PostForm)
	nav := &RedirectNavigator{}

	fieldErrs, err := h.screens(r.Context()).Create.Submit(r.Context(), draft, nav)
	if fieldErrs != nil {
		h.render(w, r, "pages/product_form.html", "New product", createFormData(draft, fieldErrs), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.Error("create product failed", slog.Any("error", err), slog.String("code", draft.Code))
		data := createFormData(draft, FieldErrors{})
		data["Error"] = UserMessage(err)
		h.render(w, r, "pages/product_form.html", "New product", data, StatusFor(err))
		return
	}
	route, _ := nav.Route()
	h.redirectWithFlash(w, r, route, shared.FlashSuccess, "Product created successfully")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	state := h.screens(r.Context()).Edit.Mount(r.Context(), raw)

	data := editFormData(raw, Draft{}, FieldErrors{})
	id, _ := ParseID(raw)
	ready := state.IsLoaded() && state.Data.ID == id
	data["Ready"] = ready
	data["Loading"] = state.IsLoading()
	if ready {
		data["Draft"] = DraftFromProduct(state.Data)
	}
	status := h.stateStatus(data, state.Phase, state.Err, "load product for edit")
	h.render(w, r, "pages/product_form.html", "Edit product", data, status)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	draft := DraftFromForm(r.PostForm)
	nav := &RedirectNavigator{}

	fieldErrs, err := h.screens(r.Context()).Edit.Submit(r.Context(), raw, draft, nav)
	switch {
	case errors.Is(err, ErrInvalidID):
		data := editFormData(raw, draft, FieldErrors{})
		data["Ready"] = false
		h.render(w, r, "pages/product_form.html", "Edit product", data, http.StatusOK)
		return
	case fieldErrs != nil:
		h.render(w, r, "pages/product_form.html", "Edit product", editFormData(raw, draft, fieldErrs), http.StatusUnprocessableEntity)
		return
	case err != nil:
		h.logger.Error("update product failed", slog.Any("error", err), slog.String("id", raw))
		data := editFormData(raw, draft, FieldErrors{})
		data["Error"] = UserMessage(err)
		h.render(w, r, "pages/product_form.html", "Edit product", data, StatusFor(err))
		return
	}
	route, _ := nav.Route()
	h.redirectWithFlash(w, r, route, shared.FlashSuccess, "Product updated successfully")
}

func (h *Handler) requestDelete(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	screens := h.screens(r.Context())

	if params, ok := listScopeFromRequest(r); ok {
		back := ListQuery(params)
		id, ok := ParseID(raw)
		if !ok {
			h.redirectWithFlash(w, r, back, shared.FlashError, "Nothing to delete")
			return
		}
		if err := screens.List.RequestDelete(r.Context(), id, params); err != nil {
			h.logger.Error("open delete prompt failed", slog.Any("error", err), slog.Int64("id", id))
			h.redirectWithFlash(w, r, back, shared.FlashError, "Could not open the delete prompt")
			return
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if err := screens.Detail.RequestDelete(r.Context(), raw); err != nil {
		if errors.Is(err, ErrInvalidID) {
			h.redirectWithFlash(w, r, ListRoute, shared.FlashError, "Nothing to delete")
			return
		}
		h.logger.Error("open delete prompt failed", slog.Any("error", err), slog.String("id", raw))
		h.redirectWithFlash(w, r, ListRoute+"/"+raw, shared.FlashError, "Could not open the delete prompt")
		return
	}
	http.Redirect(w, r, ListRoute+"/"+raw, http.StatusSeeOther)
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	screens := h.screens(r.Context())

	if params, ok := listScopeFromRequest(r); ok {
		back := ListQuery(params)
		id, ok := ParseID(raw)
		if !ok {
			overlay.MustControls(r.Context()).Close()
			h.redirectWithFlash(w, r, back, shared.FlashError, "Nothing to delete")
			return
		}
		if err := screens.List.ConfirmDelete(r.Context(), id); err != nil {
			h.logger.Error("delete product failed", slog.Any("error", err), slog.Int64("id", id))
			h.redirectWithFlash(w, r, back, shared.FlashError, UserMessage(err))
			return
		}
		h.redirectWithFlash(w, r, back, shared.FlashSuccess, "Product deleted successfully")
		return
	}

	nav := &RedirectNavigator{}
	if err := screens.Detail.ConfirmDelete(r.Context(), raw, nav); err != nil {
		if errors.Is(err, ErrInvalidID) {
			h.redirectWithFlash(w, r, ListRoute, shared.FlashError, "Nothing to delete")
			return
		}
		h.logger.Error("delete product failed", slog.Any("error", err), slog.String("id", raw))
		h.redirectWithFlash(w, r, ListRoute+"/"+raw, shared.FlashError, UserMessage(err))
		return
	}
	route, _ := nav.Route()
	h.redirectWithFlash(w, r, route, shared.FlashSuccess, "Product deleted successfully")
}

// listScopeFromRequest reads the list window a delete was started from. The
// window travels with the request so concurrent tabs keep their own pages.
func listScopeFromRequest(r *http.Request) (SearchParams, bool) {
	if err := r.ParseForm(); err != nil || r.Form.Get("from") != "list" {
		return SearchParams{}, false
	}
	return SearchParamsFromQuery(r.Form), true
}

// stateStatus records a failed load in data and picks the response status.
func (h *Handler) stateStatus(data map[string]any, phase screen.Phase, err error, action string) int {
	switch phase {
	case screen.Failed:
		h.logger.Error(action+" failed", slog.Any("error", err))
		data["Error"] = UserMessage(err)
		return StatusFor(err)
	case screen.Loading:
		data["Loading"] = true
	}
	return http.StatusOK
}

func createFormData(draft Draft, errs FieldErrors) map[string]any {
	return map[string]any{
		"Mode":   "create",
		"Action": ListRoute,
		"Cancel": ListRoute,
		"Draft":  draft,
		"Errors": errs,
		"Ready":  true,
	}
}

func editFormData(raw string, draft Draft, errs FieldErrors) map[string]any {
	data := map[string]any{
		"Mode":   "edit",
		"Draft":  draft,
		"Errors": errs,
		"Ready":  true,
		"Cancel": ListRoute,
	}
	if id, ok := ParseID(raw); ok {
		data["Action"] = EditRoute(id)
		data["Cancel"] = DetailRoute(id)
	}
	return data
}

// UserMessage turns a remote failure into a notice for the user.
func UserMessage(err error) string {
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) {
		return "Something went wrong. Please try again."
	}
	switch rpcErr.Kind {
	case rpc.KindNotFound:
		return "Product not found"
	case rpc.KindTimeout:
		return "The product service did not respond in time"
	case rpc.KindTransport:
		return "The product service is unreachable"
	case rpc.KindValidation, rpc.KindConflict:
		if rpcErr.Message != "" {
			return rpcErr.Message
		}
		return "The product service rejected the request"
	default:
		return "The product service returned an error"
	}
}

// StatusFor maps a remote failure to the status of the rendered page.
func StatusFor(err error) int {
	switch rpc.KindOf(err) {
	case rpc.KindNotFound:
		return http.StatusNotFound
	case rpc.KindValidation:
		return http.StatusUnprocessableEntity
	case rpc.KindConflict:
		return http.StatusConflict
	case rpc.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	overlayHTML, err := h.overlays.Render(r.Context(), r.URL.RequestURI(), csrfToken)
	if err != nil {
		h.logger.Error("render overlay", slog.Any("error", err))
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Overlay:     overlayHTML,
		Data:        data,
	}
	if loading, _ := data["Loading"].(bool); loading {
		viewData.RefreshAfter = 1
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", page))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
