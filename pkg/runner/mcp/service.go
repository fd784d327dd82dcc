// Package mcp provides the Model Context Protocol server integration for sitelog.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/site"
)

// Service runs page operations for MCP tools. Every call opens its own
// session, so tool calls never share filter state.
type Service struct {
	App *app.Service
	// Scope is used when a call names none.
	Scope string
}

// ErrRecordNotFound is returned when an id is not in the loaded collection.
var ErrRecordNotFound = errors.New("record not found")

// ListOptions are the arguments of a list call.
type ListOptions struct {
	Feature string
	Scope   string
	Query   app.Query
	Limit   int
	Offset  int
}

// ListResult is a window of a derived view.
type ListResult struct {
	Feature   string     `json:"feature"`
	Title     string     `json:"title"`
	Scope     string     `json:"scope"`
	Total     int        `json:"total"`
	Count     int        `json:"count"`
	Sort      string     `json:"sort"`
	SortLabel string     `json:"sortLabel"`
	Stale     string     `json:"stale,omitempty"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	Items     []any      `json:"items"`
}

// FeatureInfo describes what a page can be filtered, sorted and edited by.
type FeatureInfo struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Facets     []string `json:"facets"`
	SortFields []string `json:"sortFields"`
	FormFields []string `json:"formFields"`
}

// NewService wraps an app service.
func NewService(svc *app.Service, scope string) *Service {
	return &Service{App: svc, Scope: scope}
}

func (s *Service) scope(scope string) string {
	if strings.TrimSpace(scope) == "" {
		return s.Scope
	}
	return strings.TrimSpace(scope)
}

// open starts a session for feature and loads it.
func (s *Service) open(ctx context.Context, feature, scope string) (*app.Session, app.Pager, error) {
	if s.App == nil {
		return nil, nil, errors.New("service is not configured")
	}
	f, err := site.ParseFeature(feature)
	if err != nil {
		return nil, nil, err
	}
	session := s.App.NewSession()
	page, err := session.Page(f)
	if err != nil {
		session.Close()
		return nil, nil, err
	}
	if err := session.Load(ctx, s.scope(scope), f); err != nil {
		session.Close()
		return nil, nil, err
	}
	return session, page, nil
}

// List returns the filtered, sorted page. Limit 0 returns everything.
func (s *Service) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	session, page, err := s.open(ctx, opts.Feature, opts.Scope)
	if err != nil {
		return ListResult{}, err
	}
	defer session.Close()
	if err := page.Apply(opts.Query); err != nil {
		return ListResult{}, err
	}
	return window(session, page, opts.Offset, opts.Limit), nil
}

func window(session *app.Session, page app.Pager, offset, limit int) ListResult {
	rows := page.Rows()
	items := page.Records()
	if offset < 0 {
		offset = 0
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	res := ListResult{
		Feature:   string(page.Feature()),
		Title:     page.Feature().Title(),
		Scope:     session.Scope(),
		Total:     page.Total(),
		Count:     len(items),
		Sort:      page.Sort().String(),
		SortLabel: site.SortLabel(page.Sort()),
		Headers:   page.Headers(),
		Rows:      rows[offset:end],
		Items:     items[offset:end],
	}
	if err := page.Err(); err != nil {
		res.Stale = err.Error()
	}
	return res
}

// FacetOptions lists the values facet can be filtered by.
func (s *Service) FacetOptions(ctx context.Context, feature, facet, scope string) ([]site.Option, error) {
	session, page, err := s.open(ctx, feature, scope)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	if !contains(page.FacetNames(), facet) {
		return nil, &app.QueryError{Param: "facet", Value: facet, Valid: page.FacetNames()}
	}
	return page.FacetOptions(facet), nil
}

// Add creates a record from fields and returns the first page of the
// updated view.
func (s *Service) Add(ctx context.Context, feature, scope string, fields map[string]string) (ListResult, error) {
	session, page, err := s.open(ctx, feature, scope)
	if err != nil {
		return ListResult{}, err
	}
	defer session.Close()
	draft := page.OpenAdd()
	for k, v := range fields {
		draft.Set(k, v)
	}
	if err := page.SubmitAdd(ctx); err != nil {
		return ListResult{}, err
	}
	return window(session, page, 0, 20), nil
}

// Delete removes the record with id.
func (s *Service) Delete(ctx context.Context, feature, scope, id string) error {
	session, page, err := s.open(ctx, feature, scope)
	if err != nil {
		return err
	}
	defer session.Close()
	if !page.ConfirmDeleteID(id) {
		return fmt.Errorf("%w: %s %q", ErrRecordNotFound, feature, id)
	}
	return page.SubmitDelete(ctx)
}

// Features describes every page.
func (s *Service) Features() ([]FeatureInfo, error) {
	if s.App == nil {
		return nil, errors.New("service is not configured")
	}
	session := s.App.NewSession()
	defer session.Close()
	out := make([]FeatureInfo, 0, len(site.Pages))
	for _, f := range site.Pages {
		page, err := session.Page(f)
		if err != nil {
			return nil, err
		}
		out = append(out, FeatureInfo{
			Name:       string(f),
			Title:      f.Title(),
			Facets:     page.FacetNames(),
			SortFields: page.SortFields(),
			FormFields: site.FormFields(f),
		})
	}
	return out, nil
}

// FacetArgs normalises a tool's facets argument: each value may be a string
// (comma separated) or a list of strings.
func FacetArgs(raw map[string]any) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(map[string][]string, len(raw))
	for _, name := range names {
		switch v := raw[name].(type) {
		case string:
			out[name] = app.SplitValues(v)
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("facet %s: values must be strings", name)
				}
				out[name] = append(out[name], app.SplitValues(s)...)
			}
		default:
			return nil, fmt.Errorf("facet %s: expected a string or a list of strings", name)
		}
	}
	return out, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
