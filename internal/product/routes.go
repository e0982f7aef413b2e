package product

import (
	"net/url"
	"strconv"
)

// Screen routes.
const (
	ListRoute   = "/products"
	CreateRoute = "/products/new"
)

// DetailRoute is the route of the detail screen of id.
func DetailRoute(id int64) string {
	return ListRoute + "/" + strconv.FormatInt(id, 10)
}

// EditRoute is the route of the edit screen of id.
func EditRoute(id int64) string {
	return DetailRoute(id) + "/edit"
}

func deleteRequestRoute(id int64) string {
	return DetailRoute(id) + "/delete/request"
}

func deleteRoute(id int64) string {
	return DetailRoute(id) + "/delete"
}

// ListQuery encodes params as the query of the list route.
func ListQuery(params SearchParams) string {
	q := listValues(params)
	if len(q) == 0 {
		return ListRoute
	}
	return ListRoute + "?" + q.Encode()
}

// listScope marks a delete as started from the list window params.
func listScope(params SearchParams) url.Values {
	q := listValues(params)
	q.Set("from", "list")
	return q
}

func listValues(params SearchParams) url.Values {
	params = params.Normalize()
	q := url.Values{}
	if params.Name != "" {
		q.Set("name", params.Name)
	}
	if params.Code != "" {
		q.Set("code", params.Code)
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.Limit != DefaultLimit {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	return q
}

// SearchParamsFromQuery reads list filters from a query string.
func SearchParamsFromQuery(q url.Values) SearchParams {
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit > 100 {
		limit = 100
	}
	return SearchParams{
		Name:   q.Get("name"),
		Code:   q.Get("code"),
		Offset: offset,
		Limit:  limit,
	}.Normalize()
}

// ParseID parses a route identifier. Only positive integers are valid.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Navigator moves the shell to another screen.
type Navigator interface {
	Push(route string)
}

// RedirectNavigator remembers the last pushed route.
type RedirectNavigator struct {
	route string
}

// Push records route.
func (n *RedirectNavigator) Push(route string) {
	n.route = route
}

// Route returns the last pushed route and whether any push happened.
func (n *RedirectNavigator) Route() (string, bool) {
	return n.route, n.route != ""
}
