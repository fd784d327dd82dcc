package options

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/sitelog/pkg/site"
)

func TestQueryCollectsFacets(t *testing.T) {
	o := QueryOptions{
		Facets: []string{"statuses=new,accepted", "users=u1", "statuses= rejected "},
		Sort:   "-name",
		Search: "бетон",
	}
	q, err := o.Query()
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := strings.Join(q.Facets["statuses"], ","); got != "new,accepted,rejected" {
		t.Fatalf("unexpected statuses %q", got)
	}
	if len(q.Facets["users"]) != 1 || q.Sort != "-name" || q.Search != "бетон" {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestQueryRejectsBareFacet(t *testing.T) {
	for _, raw := range []string{"statuses", "=new"} {
		o := QueryOptions{Facets: []string{raw}}
		if _, err := o.Query(); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestFieldsLastAssignmentWins(t *testing.T) {
	o := FieldOptions{Set: []string{"name=Бетон", "quantity=1", "name=Песок=мелкий"}}
	got, err := o.Fields()
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if got["name"] != "Песок=мелкий" || got["quantity"] != "1" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, err := (&FieldOptions{Set: []string{"name"}}).Fields(); err == nil {
		t.Fatalf("expected error for missing =")
	}
}

func TestScopeResolvePrefersFlags(t *testing.T) {
	o := ScopeOptions{Scope: "p2"}
	scope, role := o.Resolve("p1", "viewer")
	if scope != "p2" || role != "viewer" {
		t.Fatalf("unexpected %q %q", scope, role)
	}
}

func TestWrap80(t *testing.T) {
	text := strings.Repeat("слово ", 40)
	for _, line := range strings.Split(Wrap80(text), "\n") {
		if n := len([]rune(strings.TrimSpace(line))); n > 80 {
			t.Fatalf("line longer than 80: %d", n)
		}
	}
}

func TestHandleErrorJSONListsFields(t *testing.T) {
	var buf bytes.Buffer
	o := OutputOptions{JSON: true, Out: &buf}
	err := &site.ValidationError{Errors: []site.FieldError{{Field: "name", Message: "required"}}}
	if got := o.HandleError(err); got != nil {
		t.Fatalf("json mode should swallow the error, got %v", got)
	}
	if !strings.Contains(buf.String(), `"fields":[{"field":"name","message":"required"}]`) {
		t.Fatalf("unexpected document %s", buf.String())
	}

	plain := OutputOptions{}
	if got := plain.HandleError(errors.New("boom")); got == nil || got.Error() != "boom" {
		t.Fatalf("plain mode should return the error, got %v", got)
	}
}
