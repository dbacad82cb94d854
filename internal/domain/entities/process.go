package entities

// Process record field names reported by the native module
const (
	FieldPID      = "pid"
	FieldPPID     = "ppid"
	FieldName     = "name"
	FieldPath     = "path"
	FieldThreads  = "threads"
	FieldOwner    = "owner"
	FieldPriority = "priority"
)

// AllowedFields lists every field a snapshot can report, in display order
var AllowedFields = []string{
	FieldPID,
	FieldPPID,
	FieldName,
	FieldPath,
	FieldThreads,
	FieldOwner,
	FieldPriority,
}

// DefaultFields are reported when neither verbose nor explicit fields are requested
var DefaultFields = []string{FieldPID, FieldPPID, FieldName}

// ProcessRecord maps field names to values for one process
type ProcessRecord map[string]interface{}

// IsAllowedField reports whether name is a known field
func IsAllowedField(name string) bool {
	for _, f := range AllowedFields {
		if f == name {
			return true
		}
	}
	return false
}
