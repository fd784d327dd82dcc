package site

// Event action codes.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionUpload = "upload"
	ActionSign   = "sign"
)

// ActionCodes in display order.
var ActionCodes = []string{ActionCreate, ActionUpdate, ActionDelete, ActionUpload, ActionSign}

var actionLabels = map[string]string{
	ActionCreate: "Создание",
	ActionUpdate: "Изменение",
	ActionDelete: "Удаление",
	ActionUpload: "Загрузка документа",
	ActionSign:   "Подписание",
}

// ActionLabel returns the human label for an action code. Unknown codes are
// returned as is.
func ActionLabel(code string) string {
	if label, ok := actionLabels[code]; ok {
		return label
	}
	return code
}

// Status codes shared by materials and violations.
const (
	StatusNew      = "new"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

var statusLabels = map[string]string{
	StatusNew:      "Новый",
	StatusAccepted: "Принят",
	StatusRejected: "Отклонён",
	StatusOpen:     "Открыто",
	StatusResolved: "Устранено",
}

// StatusLabel returns the human label for a status code.
func StatusLabel(code string) string {
	if label, ok := statusLabels[code]; ok {
		return label
	}
	return code
}
