package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// QueryBuilder accumulates filters for one request against a table of the
// service's REST surface. Builders are single-use.
type QueryBuilder struct {
	client  *Client
	table   string
	columns string
	filters []string
	order   string
}

// Select sets the projected columns (defaults to *).
func (q *QueryBuilder) Select(columns ...string) *QueryBuilder {
	if len(columns) == 0 {
		q.columns = "*"
	} else {
		q.columns = strings.Join(columns, ",")
	}
	return q
}

// Eq adds an equality filter on a column.
func (q *QueryBuilder) Eq(column, value string) *QueryBuilder {
	q.filters = append(q.filters, column+"=eq."+url.QueryEscape(value))
	return q
}

// OrderDesc orders the result set by a column, newest first.
func (q *QueryBuilder) OrderDesc(column string) *QueryBuilder {
	q.order = column + ".desc"
	return q
}

func (q *QueryBuilder) path(extra ...string) string {
	params := make([]string, 0, len(q.filters)+3)
	if q.columns != "" {
		params = append(params, "select="+q.columns)
	}
	params = append(params, q.filters...)
	if q.order != "" {
		params = append(params, "order="+q.order)
	}
	params = append(params, extra...)

	p := "/rest/v1/" + q.table
	if len(params) > 0 {
		p += "?" + strings.Join(params, "&")
	}
	return p
}

// Do executes the accumulated query as a read and decodes the rows into out.
func (q *QueryBuilder) Do(ctx context.Context, accessToken string, out any) error {
	return q.client.do(ctx, http.MethodGet, q.path(), accessToken, nil, out)
}

// Insert writes a new row and decodes the created representation into out.
func (q *QueryBuilder) Insert(ctx context.Context, accessToken string, row any, out any) error {
	return q.client.do(ctx, http.MethodPost, q.path("returning=representation"), accessToken, row, out)
}

// Update patches the rows matched by the accumulated filters and decodes the
// updated representation into out. Refuses to run without a filter.
func (q *QueryBuilder) Update(ctx context.Context, accessToken string, patch any, out any) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("platform: update on %q without filter", q.table)
	}
	return q.client.do(ctx, http.MethodPatch, q.path("returning=representation"), accessToken, patch, out)
}

// Delete removes the rows matched by the accumulated filters. Refuses to run
// without a filter.
func (q *QueryBuilder) Delete(ctx context.Context, accessToken string) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("platform: delete on %q without filter", q.table)
	}
	return q.client.do(ctx, http.MethodDelete, q.path(), accessToken, nil, nil)
}
