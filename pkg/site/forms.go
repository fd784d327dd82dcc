package site

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/sitelog/pkg/form"
)

// Form field names shared by the add/edit forms.
const (
	FieldID             = "id"
	FieldCreatedAt      = "createdAt"
	FieldName           = "name"
	FieldUserID         = "userId"
	FieldObjectID       = "objectId"
	FieldOrganizationID = "organizationId"
	FieldAction         = "action"
	FieldObjectName     = "objectName"
	FieldDocumentID     = "documentId"
	FieldStatus         = "status"
	FieldQuantity       = "quantity"
	FieldUnit           = "unit"
	FieldDueDate        = "dueDate"
	FieldPosition       = "position"
	FieldComment        = "comment"
)

// FormFields lists the editable fields of a feature in form order.
func FormFields(f Feature) []string {
	switch f {
	case Events:
		return []string{FieldAction, FieldObjectID, FieldUserID, FieldObjectName, FieldDocumentID}
	case Materials:
		return []string{FieldName, FieldObjectID, FieldUserID, FieldQuantity, FieldUnit, FieldStatus}
	case Violations:
		return []string{FieldName, FieldObjectID, FieldOrganizationID, FieldUserID, FieldStatus, FieldDueDate}
	case Visits:
		return []string{FieldUserID, FieldObjectID, FieldPosition, FieldComment}
	}
	return nil
}

// DateLayout is the layout of date-only form fields.
const DateLayout = "2006-01-02"

// NewID returns an id for an entity created on this side.
func NewID() string {
	return uuid.NewString()
}

// Clock lets tests pin the creation time of new entities.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func idAndTime(v form.Values, c *checker, now Clock) (string, time.Time) {
	id := v.Get(FieldID)
	if id == "" {
		id = NewID()
	}
	created := now.now()
	if v.Has(FieldCreatedAt) {
		t, err := time.Parse(time.RFC3339, v.Get(FieldCreatedAt))
		if err != nil {
			c.add(FieldCreatedAt, "must be an RFC 3339 timestamp")
		} else {
			created = t
		}
	}
	return id, created
}

func required(v form.Values, c *checker, fields ...string) {
	for _, f := range fields {
		if !v.Has(f) {
			c.add(f, "required")
		}
	}
}

// EventFromValues builds an Event from a submitted form.
func EventFromValues(v form.Values, now Clock) (Event, error) {
	c := &checker{}
	required(v, c, FieldAction, FieldObjectID)
	id, created := idAndTime(v, c, now)
	if action := v.Get(FieldAction); action != "" && ActionLabel(action) == action {
		c.add(FieldAction, "unknown action")
	}
	if err := c.err(); err != nil {
		return Event{}, err
	}
	return Event{
		ID:         id,
		CreatedAt:  created,
		UserID:     v.Get(FieldUserID),
		ObjectID:   v.Get(FieldObjectID),
		Action:     v.Get(FieldAction),
		ObjectName: v.Get(FieldObjectName),
		DocumentID: v.Get(FieldDocumentID),
	}, nil
}

// MaterialFromValues builds a Material from a submitted form.
func MaterialFromValues(v form.Values, now Clock) (Material, error) {
	c := &checker{}
	required(v, c, FieldName, FieldObjectID)
	id, created := idAndTime(v, c, now)
	qty, ok, err := v.Float(FieldQuantity)
	switch {
	case err != nil:
		c.add(FieldQuantity, "must be a number")
	case ok && qty < 0:
		c.add(FieldQuantity, "must not be negative")
	}
	status := v.Get(FieldStatus)
	if status == "" {
		status = StatusNew
	}
	if err := c.err(); err != nil {
		return Material{}, err
	}
	return Material{
		ID:        id,
		CreatedAt: created,
		Name:      v.Get(FieldName),
		UserID:    v.Get(FieldUserID),
		ObjectID:  v.Get(FieldObjectID),
		Status:    status,
		Quantity:  qty,
		Unit:      v.Get(FieldUnit),
	}, nil
}

// ViolationFromValues builds a Violation from a submitted form.
func ViolationFromValues(v form.Values, now Clock, loc *time.Location) (Violation, error) {
	c := &checker{}
	required(v, c, FieldName, FieldObjectID)
	id, created := idAndTime(v, c, now)
	var due *time.Time
	t, ok, err := v.Time(FieldDueDate, DateLayout, loc)
	switch {
	case err != nil:
		c.add(FieldDueDate, "must be a date like 2024-03-01")
	case ok:
		due = &t
	}
	status := v.Get(FieldStatus)
	if status == "" {
		status = StatusOpen
	}
	if err := c.err(); err != nil {
		return Violation{}, err
	}
	return Violation{
		ID:             id,
		CreatedAt:      created,
		Name:           v.Get(FieldName),
		UserID:         v.Get(FieldUserID),
		ObjectID:       v.Get(FieldObjectID),
		OrganizationID: v.Get(FieldOrganizationID),
		Status:         status,
		DueDate:        due,
	}, nil
}

// VisitFromValues builds a Visit from a submitted form.
func VisitFromValues(v form.Values, now Clock) (Visit, error) {
	c := &checker{}
	required(v, c, FieldUserID, FieldObjectID)
	id, created := idAndTime(v, c, now)
	if err := c.err(); err != nil {
		return Visit{}, err
	}
	return Visit{
		ID:        id,
		CreatedAt: created,
		UserID:    v.Get(FieldUserID),
		ObjectID:  v.Get(FieldObjectID),
		Position:  v.Get(FieldPosition),
		Comment:   strings.TrimSpace(v.Get(FieldComment)),
	}, nil
}
