package models

// Row is a single record returned by a generic table lookup, keyed by column name.
type Row map[string]any

// String returns the column as a string, accepting TEXT values scanned as bytes.
func (r Row) String(column string) (string, bool) {
	switch v := r[column].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// Filter is an equality predicate on a column.
type Filter struct {
	Column string
	Value  any
}

// Eq builds a [Filter] matching rows where column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Tables holding plan tier history and role grants. Rows with is_active = 1 are current.
const (
	PlansTable = "user_plans"
	RolesTable = "user_roles"
)
