package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldKey        = "key"
	FieldID         = "id"
	FieldIDs        = "ids"
	FieldCount      = "count"
	FieldDate       = "date"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldActiveID   = "active_id"
	FieldOverID     = "over_id"
	FieldChanged    = "changed"
	FieldBackend    = "backend"
	FieldPath       = "path"
	FieldEntity     = "entity"
	FieldDurationMs = "duration_ms"
	FieldCurrency   = "currency"
	FieldTheme      = "theme"
	FieldLanguage   = "language"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentTransactions = "transactions"
	ComponentOrdering     = "ordering"
	ComponentSettings     = "settings"
	ComponentSummary      = "summary"
	ComponentBackup       = "backup"
	ComponentStorage      = "storage"
	ComponentAMQP         = "amqp"
	ComponentBackend      = "backend"
)

// Operations defines standard operation names
const (
	OpAdd      = "add"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpLoad     = "load"
	OpMove     = "move"
	OpExport   = "export"
	OpImport   = "import"
	OpPersist  = "persist"
	OpRollback = "rollback"
	OpPublish  = "publish"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the identifying fields of one record
func (f LogFields) WithTransaction(id, date string) LogFields {
	f[FieldID] = id
	f[FieldDate] = date
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
