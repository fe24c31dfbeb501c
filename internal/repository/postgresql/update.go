package postgresql

import (
	"fmt"
	"slices"
	"strings"
)

// buildUpdate renders "UPDATE table SET ..." for the given columns, always
// touching updated_at. Columns are sorted so the statement is stable.
func buildUpdate(table string, updates map[string]interface{}) (string, []interface{}) {
	cols := make([]string, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	slices.Sort(cols)

	setClauses := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols))
	for i, col := range cols {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, updates[col])
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	return "UPDATE " + table + " SET " + strings.Join(setClauses, ", "), args
}
