package add

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/source"
)

type recorder struct {
	created []string
}

func (r *recorder) Create(_ context.Context, resource, scope string, body []byte) ([]byte, error) {
	r.created = append(r.created, resource+"@"+scope)
	return body, nil
}

func (r *recorder) Update(_ context.Context, _, _ string, body []byte) ([]byte, error) {
	return body, nil
}

func (r *recorder) Delete(context.Context, string, string) error { return nil }

func service(role site.Role, m app.Mutator) *app.Service {
	return &app.Service{
		Raw: source.RawFunc(func(_ context.Context, resource, _ string) ([]byte, error) {
			if resource == "users" {
				return []byte(`[{"id":"u1","firstName":"Иван","lastName":"Иванов"}]`), nil
			}
			return []byte(`[]`), nil
		}),
		Mutator:  m,
		Role:     role,
		Location: time.UTC,
		Log:      zerolog.Nop(),
	}
}

func TestAddCreatesRecord(t *testing.T) {
	color.NoColor = true
	rec := &recorder{}
	var buf bytes.Buffer
	a := Add{
		Service: service(site.RoleInspector, rec),
		Feature: site.Visits,
		Scope:   "p1",
		Fields:  map[string]string{site.FieldUserID: "u1", site.FieldObjectID: "o1"},
		Out:     &buf,
	}
	if err := a.Do(context.Background()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(rec.created) != 1 || rec.created[0] != "visits@p1" {
		t.Fatalf("unexpected creates %v", rec.created)
	}
	if !strings.Contains(buf.String(), "Иванов Иван") {
		t.Fatalf("expected the new visit in the table:\n%s", buf.String())
	}
}

func TestAddValidates(t *testing.T) {
	rec := &recorder{}
	a := Add{
		Service: service(site.RoleManager, rec),
		Feature: site.Materials,
		Fields:  map[string]string{site.FieldQuantity: "много"},
		Out:     &bytes.Buffer{},
	}
	err := a.Do(context.Background())
	var ve *site.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, badQty := ve.Field(site.FieldQuantity)
	_, badName := ve.Field(site.FieldName)
	if !badQty || !badName {
		t.Fatalf("expected quantity and name errors, got %v", ve)
	}
	if len(rec.created) != 0 {
		t.Fatalf("invalid forms must not reach the api")
	}
}

func TestAddForbiddenForViewer(t *testing.T) {
	a := Add{
		Service: service(site.RoleViewer, &recorder{}),
		Feature: site.Visits,
		Fields:  map[string]string{site.FieldUserID: "u1", site.FieldObjectID: "o1"},
		Out:     &bytes.Buffer{},
	}
	if err := a.Do(context.Background()); !errors.Is(err, site.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
