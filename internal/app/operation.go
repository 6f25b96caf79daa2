package app

// Operation tracks a CLI invocation that may mutate the backup directory.
// Operations are created in memory with rowID=0. Only mutating commands
// persist them to the audit log (giving them an auto-increment row id).
type Operation struct {
	rowID      int64
	OpID       string // correlation id shared with the log lines
	Name       string
	Parameters string
	Status     string // "success" or "error"
}

// NewOperation creates a new in-memory operation record.
func NewOperation(opID, name, parameters string) *Operation {
	return &Operation{
		OpID:       opID,
		Name:       name,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this operation has been saved to the audit log.
func (op *Operation) Persisted() bool {
	return op.rowID != 0
}
