package domain

// RowRule evaluates one parsed row against a semantic invariant. Rules are
// pure: row and index in, defects out, no shared mutable state, so the table
// validator may run them across rows concurrently.
type RowRule interface {
	Name() string
	Evaluate(row *SubjectRow, rowIndex int) []ValidationError
}

// TableRule evaluates a cross-row invariant after every row result has been
// collected. Table rules run in a single-threaded reduction.
type TableRule interface {
	Name() string
	Evaluate(rows []SubjectRow) []ValidationError
}

// RulesEngine aggregates row and table rules.
type RulesEngine struct {
	rowRules   []RowRule
	tableRules []TableRule
}

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// RegisterRow appends a row rule to the engine.
func (e *RulesEngine) RegisterRow(rule RowRule) {
	e.rowRules = append(e.rowRules, rule)
}

// RegisterTable appends a table rule to the engine.
func (e *RulesEngine) RegisterTable(rule TableRule) {
	e.tableRules = append(e.tableRules, rule)
}

// EvaluateRow runs every row rule and concatenates their defects.
func (e *RulesEngine) EvaluateRow(row *SubjectRow, rowIndex int) []ValidationError {
	var combined []ValidationError
	for _, rule := range e.rowRules {
		combined = append(combined, rule.Evaluate(row, rowIndex)...)
	}
	return combined
}

// EvaluateTable runs every table rule over the collected rows.
func (e *RulesEngine) EvaluateTable(rows []SubjectRow) []ValidationError {
	var combined []ValidationError
	for _, rule := range e.tableRules {
		combined = append(combined, rule.Evaluate(rows)...)
	}
	return combined
}
