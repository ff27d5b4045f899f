package postgres

import (
	"strings"

	"github.com/phrazzld/almanac/internal/store"
)

// templateWhere renders the WHERE clause for a template listing. All
// template tables share the id, project_id and archived columns the
// filter touches.
func templateWhere(filter store.TemplateFilter) (string, []any) {
	var clauses []string
	var args []any

	if !filter.IncludeArchived {
		clauses = append(clauses, "archived = FALSE")
	}
	if len(filter.IDs) > 0 {
		ph := placeholders(len(args)+1, len(filter.IDs))
		for _, id := range filter.IDs {
			args = append(args, id)
		}
		clauses = append(clauses, "id IN ("+ph+")")
	}
	if len(filter.ProjectIDs) > 0 {
		ph := placeholders(len(args)+1, len(filter.ProjectIDs))
		for _, id := range filter.ProjectIDs {
			args = append(args, id)
		}
		clauses = append(clauses, "project_id IN ("+ph+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
