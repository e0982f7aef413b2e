package product

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmaster/internal/rpc"
)

func TestCreateWithEmptyFieldMakesNoRemoteCall(t *testing.T) {
	inv := newRecordingInvoker()
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})
	nav := &RedirectNavigator{}

	d := validDraft()
	d.Code = ""
	errs, err := screens.Create.Submit(context.Background(), d, nav)

	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.NotEmpty(t, errs[FieldCode])
	assert.Zero(t, inv.total())
	_, pushed := nav.Route()
	assert.False(t, pushed)
}

func TestCreateIssuesOneCallWithWireNames(t *testing.T) {
	inv := newRecordingInvoker()
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})
	nav := &RedirectNavigator{}

	errs, err := screens.Create.Submit(context.Background(), validDraft(), nav)
	require.NoError(t, err)
	assert.Nil(t, errs)

	calls := inv.callsTo(OpCreate)
	require.Len(t, calls, 1)
	assert.Equal(t, 1, inv.total())
	assert.Equal(t, map[string]any{
		"name":                    "Widget",
		"code":                    "W-1",
		"unit":                    "ea",
		"default_price":           9.99,
		"standard_stock_quantity": float64(5),
	}, calls[0].Request)

	route, _ := nav.Route()
	assert.Equal(t, ListRoute, route)
}

func TestCreateRemoteFailureDoesNotNavigate(t *testing.T) {
	inv := newRecordingInvoker()
	inv.errs[OpCreate] = &rpc.Error{Op: OpCreate, Kind: rpc.KindConflict, Status: http.StatusConflict, Message: "code already exists"}
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})
	nav := &RedirectNavigator{}

	errs, err := screens.Create.Submit(context.Background(), validDraft(), nav)
	assert.Nil(t, errs)
	assert.Equal(t, rpc.KindConflict, rpc.KindOf(err))
	_, pushed := nav.Route()
	assert.False(t, pushed)
}

func TestDetailConfirmDeleteDeletesOnceAndNavigates(t *testing.T) {
	inv := newRecordingInvoker()
	inv.responses[OpFindByID] = `{"product":` + productJSON + `}`
	confirm := &recordingConfirmations{}
	screens := NewScreens(NewAPI(inv), confirm)
	ctx, sh := shellContext()

	state := screens.Detail.Mount(ctx, "42")
	require.True(t, state.IsLoaded())

	require.NoError(t, screens.Detail.RequestDelete(ctx, "42"))
	assert.True(t, sh.Overlay.State().Visible)
	require.Len(t, confirm.prompts, 1)
	assert.Equal(t, "Widget", confirm.prompts[0].Name)
	assert.Empty(t, inv.callsTo(OpDelete))

	nav := &RedirectNavigator{}
	require.NoError(t, screens.Detail.ConfirmDelete(ctx, "42", nav))

	deletes := inv.callsTo(OpDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, map[string]any{"product_id": float64(42)}, deletes[0].Request)
	route, _ := nav.Route()
	assert.Equal(t, ListRoute, route)
	assert.True(t, sh.Overlay.State().Hidden())
}

func TestDetailWithInvalidIDShowsNothing(t *testing.T) {
	inv := newRecordingInvoker()
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})
	ctx, sh := shellContext()

	for _, raw := range []string{"", "abc", "0", "-3"} {
		state := screens.Detail.Mount(ctx, raw)
		assert.True(t, state.IsIdle(), raw)
	}
	assert.Zero(t, inv.total())

	assert.ErrorIs(t, screens.Detail.RequestDelete(ctx, "abc"), ErrInvalidID)
	assert.True(t, sh.Overlay.State().Hidden())
}

func TestDetailNotFoundFails(t *testing.T) {
	inv := newRecordingInvoker()
	inv.errs[OpFindByID] = &rpc.Error{Op: OpFindByID, Kind: rpc.KindNotFound, Status: http.StatusNotFound}
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})

	state := screens.Detail.Mount(context.Background(), "9")
	require.True(t, state.IsFailed())
	assert.True(t, rpc.IsNotFound(state.Err))
}

func TestListEmptySearchIsLoadedEmpty(t *testing.T) {
	inv := newRecordingInvoker()
	inv.responses[OpSearch] = `{"products":[]}`
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})

	state := screens.List.Mount(context.Background(), SearchParams{})
	assert.True(t, state.IsEmpty())
	assert.False(t, state.IsLoading())
	assert.False(t, state.IsFailed())
}

func TestListConfirmDeleteDropsRowWithoutSearching(t *testing.T) {
	inv := newRecordingInvoker()
	inv.responses[OpSearch] = `{"products":[` + productJSON + `]}`
	confirm := &recordingConfirmations{}
	screens := NewScreens(NewAPI(inv), confirm)
	ctx, sh := shellContext()

	params := SearchParams{Name: "wid"}
	screens.List.Mount(ctx, params)
	require.NoError(t, screens.List.RequestDelete(ctx, 42, params))
	assert.Equal(t, "/products/42/delete?from=list&name=wid", confirm.prompts[0].Action)
	assert.Equal(t, "Widget", confirm.prompts[0].Name)
	assert.True(t, sh.Overlay.State().Visible)

	require.NoError(t, screens.List.ConfirmDelete(ctx, 42))

	assert.True(t, sh.Overlay.State().Hidden())
	assert.Len(t, inv.callsTo(OpDelete), 1)
	assert.Len(t, inv.callsTo(OpSearch), 1)
	assert.True(t, screens.List.State().IsEmpty())
}

func TestListDeleteFailureKeepsResults(t *testing.T) {
	inv := newRecordingInvoker()
	inv.responses[OpSearch] = `{"products":[` + productJSON + `]}`
	inv.errs[OpDelete] = errors.New("boom")
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})
	ctx, _ := shellContext()

	screens.List.Mount(ctx, SearchParams{})
	assert.Error(t, screens.List.ConfirmDelete(ctx, 42))
	assert.Len(t, inv.callsTo(OpSearch), 1)
	assert.Len(t, screens.List.State().Data, 1)
}

type gatedSearch struct {
	params SearchParams
	reply  chan []Product
}

type gatedFind struct {
	id    int64
	reply chan Product
}

// gatedOps parks every Search and FindByID until the test replies.
type gatedOps struct {
	Operations
	searches chan gatedSearch
	finds    chan gatedFind
}

func newGatedOps() *gatedOps {
	return &gatedOps{searches: make(chan gatedSearch), finds: make(chan gatedFind)}
}

func (g *gatedOps) Search(ctx context.Context, params SearchParams) ([]Product, error) {
	reply := make(chan []Product)
	g.searches <- gatedSearch{params: params, reply: reply}
	return <-reply, nil
}

func (g *gatedOps) FindByID(ctx context.Context, id int64) (Product, error) {
	reply := make(chan Product)
	g.finds <- gatedFind{id: id, reply: reply}
	return <-reply, nil
}

func TestListStaleCompletionIsDiscarded(t *testing.T) {
	ops := newGatedOps()
	screens := NewScreens(ops, &recordingConfirmations{})

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		screens.List.Mount(context.Background(), SearchParams{})
	}()
	first := <-ops.searches

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		screens.List.Mount(context.Background(), SearchParams{})
	}()
	second := <-ops.searches

	second.reply <- []Product{{ID: 2, Name: "newer"}}
	<-secondDone
	first.reply <- []Product{{ID: 1, Name: "older"}}
	<-firstDone

	state := screens.List.State()
	require.True(t, state.IsLoaded())
	require.Len(t, state.Data, 1)
	assert.Equal(t, "newer", state.Data[0].Name)
}

func TestListConcurrentMountsKeepTheirOwnWindow(t *testing.T) {
	ops := newGatedOps()
	screens := NewScreens(ops, &recordingConfirmations{})

	results := make(chan []Product, 2)
	mount := func(name string) {
		state := screens.List.Mount(context.Background(), SearchParams{Name: name})
		results <- state.Data
	}

	go mount("alpha")
	alpha := <-ops.searches
	go mount("beta")
	beta := <-ops.searches
	require.Equal(t, "alpha", alpha.params.Name)
	require.Equal(t, "beta", beta.params.Name)

	beta.reply <- []Product{{ID: 2, Name: "beta"}}
	got := <-results
	require.Len(t, got, 1)
	assert.Equal(t, "beta", got[0].Name)

	alpha.reply <- []Product{{ID: 1, Name: "alpha"}}
	got = <-results
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name)
}

func TestDetailConcurrentMountsKeepTheirOwnProduct(t *testing.T) {
	ops := newGatedOps()
	screens := NewScreens(ops, &recordingConfirmations{})
	assertOwnProductPerID(t, ops, func(raw string) Product {
		return screens.Detail.Mount(context.Background(), raw).Data
	})
}

func TestEditConcurrentMountsKeepTheirOwnProduct(t *testing.T) {
	ops := newGatedOps()
	screens := NewScreens(ops, &recordingConfirmations{})
	assertOwnProductPerID(t, ops, func(raw string) Product {
		return screens.Edit.Mount(context.Background(), raw).Data
	})
}

// assertOwnProductPerID mounts ids 1 and 2 concurrently, settles them in
// both orders, and checks every mount returns the product it asked for.
func assertOwnProductPerID(t *testing.T, ops *gatedOps, mount func(raw string) Product) {
	t.Helper()
	for _, newerFirst := range []bool{true, false} {
		got := make(map[string]chan Product)
		start := func(raw string) gatedFind {
			out := make(chan Product, 1)
			got[raw] = out
			go func() { out <- mount(raw) }()
			return <-ops.finds
		}
		one := start("1")
		two := start("2")
		require.Equal(t, int64(1), one.id)
		require.Equal(t, int64(2), two.id)

		order := []gatedFind{one, two}
		if newerFirst {
			order = []gatedFind{two, one}
		}
		for _, f := range order {
			f.reply <- Product{ID: f.id, Code: "P-" + strconv.FormatInt(f.id, 10)}
		}

		assert.Equal(t, int64(1), (<-got["1"]).ID, "newerFirst=%v", newerFirst)
		assert.Equal(t, int64(2), (<-got["2"]).ID, "newerFirst=%v", newerFirst)
	}
}

func TestEditSubmitUpdatesAndNavigatesToDetail(t *testing.T) {
	inv := newRecordingInvoker()
	inv.responses[OpFindByID] = `{"product":` + productJSON + `}`
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})

	state := screens.Edit.Mount(context.Background(), "42")
	require.True(t, state.IsLoaded())
	d := DraftFromProduct(state.Data)
	d.Unit = "box"

	nav := &RedirectNavigator{}
	errs, err := screens.Edit.Submit(context.Background(), "42", d, nav)
	require.NoError(t, err)
	assert.Nil(t, errs)

	updates := inv.callsTo(OpUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, "box", updates[0].Request["unit"])
	route, _ := nav.Route()
	assert.Equal(t, "/products/42", route)
}

func TestEditSubmitRejectsInvalidID(t *testing.T) {
	inv := newRecordingInvoker()
	screens := NewScreens(NewAPI(inv), &recordingConfirmations{})
	_, err := screens.Edit.Submit(context.Background(), "x", validDraft(), &RedirectNavigator{})
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Zero(t, inv.total())
}
