package repository

import (
	"strings"
	"testing"

	"github.com/cybershield/threat-exchange/internal/domain"
)

// reports and report_shares both carry organization_id and created_at
// columns. The list query must therefore keep report_shares out of the outer
// FROM scope: with both tables joined, its unqualified column references
// would be rejected by Postgres as ambiguous (error 42702).
func TestListByOrganizationsQueryKeepsSingleTableScope(t *testing.T) {
	query := strings.ToUpper(listByOrganizationsQuery)

	if strings.Contains(query, "JOIN") {
		t.Fatal("report_shares must be referenced through a subselect, not a join")
	}

	from := strings.Index(query, "FROM")
	where := strings.Index(query, "WHERE")
	if from == -1 || where == -1 || from > where {
		t.Fatalf("unexpected query shape:\n%s", listByOrganizationsQuery)
	}
	if fromClause := query[from:where]; strings.Contains(fromClause, "REPORT_SHARES") {
		t.Errorf("outer FROM clause must name only the reports table, got %q", fromClause)
	}

	if !strings.Contains(query, "IN (SELECT REPORT_ID FROM REPORT_SHARES") {
		t.Error("share visibility must come from a report_shares subselect")
	}
	if !strings.Contains(query, "ORDER BY CREATED_AT") {
		t.Error("results must stay ordered by creation time")
	}
}

func TestReportColumnsMatchScanTargets(t *testing.T) {
	columns := strings.Split(reportColumns, ",")
	targets := scanTargets(&domain.Report{})
	if len(columns) != len(targets) {
		t.Errorf("%d columns selected but %d scan targets", len(columns), len(targets))
	}
}
