package site

import (
	"strconv"
	"time"

	"tableflip.dev/sitelog/pkg/view"
)

// Table describes how a feature renders as rows.
type Table[T any] struct {
	Headers []string
	Row     func(T) []string
	// Seed maps an item to form fields for its edit draft.
	Seed func(T) map[string]string
}

func stamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return view.ShortDate(t, loc) + " " + view.TimeOfDay(t, loc)
}

func orRaw(label, raw string) string {
	if label != "" {
		return label
	}
	return raw
}

// EventTable renders the event journal.
func EventTable(dir *Directory, loc *time.Location) Table[Event] {
	return Table[Event]{
		Headers: []string{"ID", "ДАТА", "ДЕЙСТВИЕ", "ОБЪЕКТ", "ПОЛЬЗОВАТЕЛЬ"},
		Row: func(e Event) []string {
			object := e.ObjectName
			if object == "" {
				object = orRaw(dir.ObjectName(e.ObjectID), e.ObjectID)
			}
			return []string{e.ID, stamp(e.CreatedAt, loc), ActionLabel(e.Action), object, orRaw(dir.UserName(e.UserID), e.UserID)}
		},
		Seed: func(e Event) map[string]string {
			return map[string]string{
				FieldID:         e.ID,
				FieldUserID:     e.UserID,
				FieldObjectID:   e.ObjectID,
				FieldAction:     e.Action,
				FieldObjectName: e.ObjectName,
				FieldDocumentID: e.DocumentID,
				FieldCreatedAt:  e.CreatedAt.Format(time.RFC3339),
			}
		},
	}
}

// MaterialTable renders materials.
func MaterialTable(dir *Directory, loc *time.Location) Table[Material] {
	return Table[Material]{
		Headers: []string{"ID", "ДАТА", "НАИМЕНОВАНИЕ", "КОЛ-ВО", "СТАТУС", "ОБЪЕКТ", "ПОЛЬЗОВАТЕЛЬ"},
		Row: func(m Material) []string {
			qty := ""
			if m.Quantity != 0 || m.Unit != "" {
				qty = strconv.FormatFloat(m.Quantity, 'f', -1, 64)
				if m.Unit != "" {
					qty += " " + m.Unit
				}
			}
			return []string{m.ID, stamp(m.CreatedAt, loc), m.Name, qty, StatusLabel(m.Status),
				orRaw(dir.ObjectName(m.ObjectID), m.ObjectID), orRaw(dir.UserName(m.UserID), m.UserID)}
		},
		Seed: func(m Material) map[string]string {
			return map[string]string{
				FieldID:        m.ID,
				FieldName:      m.Name,
				FieldUserID:    m.UserID,
				FieldObjectID:  m.ObjectID,
				FieldStatus:    m.Status,
				FieldQuantity:  strconv.FormatFloat(m.Quantity, 'f', -1, 64),
				FieldUnit:      m.Unit,
				FieldCreatedAt: m.CreatedAt.Format(time.RFC3339),
			}
		},
	}
}

// ViolationTable renders violations.
func ViolationTable(dir *Directory, loc *time.Location) Table[Violation] {
	return Table[Violation]{
		Headers: []string{"ID", "ДАТА", "НАРУШЕНИЕ", "СТАТУС", "СРОК", "ОРГАНИЗАЦИЯ", "ОБЪЕКТ"},
		Row: func(v Violation) []string {
			due := ""
			if v.DueDate != nil {
				due = view.ShortDate(*v.DueDate, loc)
			}
			return []string{v.ID, stamp(v.CreatedAt, loc), v.Name, StatusLabel(v.Status), due,
				orRaw(dir.OrganizationName(v.OrganizationID), v.OrganizationID), orRaw(dir.ObjectName(v.ObjectID), v.ObjectID)}
		},
		Seed: func(v Violation) map[string]string {
			m := map[string]string{
				FieldID:             v.ID,
				FieldName:           v.Name,
				FieldUserID:         v.UserID,
				FieldObjectID:       v.ObjectID,
				FieldOrganizationID: v.OrganizationID,
				FieldStatus:         v.Status,
				FieldCreatedAt:      v.CreatedAt.Format(time.RFC3339),
			}
			if v.DueDate != nil {
				m[FieldDueDate] = v.DueDate.In(loc).Format(DateLayout)
			}
			return m
		},
	}
}

// VisitTable renders visits.
func VisitTable(dir *Directory, loc *time.Location) Table[Visit] {
	return Table[Visit]{
		Headers: []string{"ID", "ДАТА", "ПОСЕТИТЕЛЬ", "ДОЛЖНОСТЬ", "ОБЪЕКТ", "КОММЕНТАРИЙ"},
		Row: func(v Visit) []string {
			position := v.Position
			if position == "" {
				position = dir.UserPosition(v.UserID)
			}
			return []string{v.ID, stamp(v.CreatedAt, loc), orRaw(dir.UserName(v.UserID), v.UserID), position,
				orRaw(dir.ObjectName(v.ObjectID), v.ObjectID), v.Comment}
		},
		Seed: func(v Visit) map[string]string {
			return map[string]string{
				FieldID:        v.ID,
				FieldUserID:    v.UserID,
				FieldObjectID:  v.ObjectID,
				FieldPosition:  v.Position,
				FieldComment:   v.Comment,
				FieldCreatedAt: v.CreatedAt.Format(time.RFC3339),
			}
		},
	}
}
