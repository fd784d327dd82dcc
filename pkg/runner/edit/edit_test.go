package edit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/source"
)

type recorder struct {
	updated map[string][]byte
}

func (r *recorder) Create(_ context.Context, _, _ string, body []byte) ([]byte, error) {
	return body, nil
}

func (r *recorder) Update(_ context.Context, resource, id string, body []byte) ([]byte, error) {
	r.updated[resource+"/"+id] = body
	return body, nil
}

func (r *recorder) Delete(context.Context, string, string) error { return nil }

func TestEditUpdatesFields(t *testing.T) {
	rec := &recorder{updated: map[string][]byte{}}
	svc := &app.Service{
		Raw: source.RawFunc(func(_ context.Context, resource, _ string) ([]byte, error) {
			if resource == "violations" {
				return []byte(`[{"id":"x1","createdAt":"2024-03-01T09:00:00Z","name":"Нет ограждения","objectId":"o1","status":"open","dueDate":"2024-03-10T00:00:00Z"}]`), nil
			}
			return []byte(`[]`), nil
		}),
		Mutator:  rec,
		Role:     site.RoleManager,
		Location: time.UTC,
		Log:      zerolog.Nop(),
	}
	var buf bytes.Buffer
	e := Edit{
		Service: svc,
		Feature: site.Violations,
		Scope:   "p1",
		ID:      "x1",
		Fields:  map[string]string{site.FieldStatus: site.StatusResolved},
		Unset:   []string{site.FieldDueDate},
		JSON:    true,
		Out:     &buf,
	}
	if err := e.Do(context.Background()); err != nil {
		t.Fatalf("edit: %v", err)
	}
	var sent site.Violation
	if err := json.Unmarshal(rec.updated["violations/x1"], &sent); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if sent.Status != site.StatusResolved || sent.DueDate != nil || sent.Name != "Нет ограждения" {
		t.Fatalf("unexpected update %+v", sent)
	}
	var fields map[string]string
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if fields[site.FieldStatus] != site.StatusResolved {
		t.Fatalf("unexpected output %v", fields)
	}
}

func TestEditUnknownID(t *testing.T) {
	svc := &app.Service{
		Raw:  source.RawFunc(func(context.Context, string, string) ([]byte, error) { return []byte(`[]`), nil }),
		Role: site.RoleManager,
		Log:  zerolog.Nop(),
	}
	e := Edit{Service: svc, Feature: site.Visits, ID: "nope", Out: &bytes.Buffer{}}
	if err := e.Do(context.Background()); err == nil {
		t.Fatalf("expected an error for an unknown id")
	}
}
