package shield

import (
	"strconv"
	"strings"
)

// ReportFilter narrows a report list. Zero-value or "all" fields match
// everything, so the zero filter is the identity.
type ReportFilter struct {
	Search   string
	Status   string
	Severity string
}

func matchAll(value string) bool {
	return value == "" || strings.EqualFold(value, "all")
}

// Matches reports whether a single report passes the filter. The search term
// is a case-insensitive substring match over title and description; status
// and severity are exact case-insensitive matches.
func (f ReportFilter) Matches(report Report) bool {
	if !matchAll(f.Status) && !strings.EqualFold(report.Status, f.Status) {
		return false
	}
	if !matchAll(f.Severity) && !strings.EqualFold(report.Severity, f.Severity) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(report.Title), needle) &&
			!strings.Contains(strings.ToLower(report.Description), needle) {
			return false
		}
	}
	return true
}

// FilterReports returns the reports passing the filter, in their original
// order. The input slice is never mutated.
func FilterReports(reports []Report, filter ReportFilter) []Report {
	filtered := make([]Report, 0, len(reports))
	for _, report := range reports {
		if filter.Matches(report) {
			filtered = append(filtered, report)
		}
	}
	return filtered
}

// ReportGroup is one organization's slice of a grouped report list.
type ReportGroup struct {
	OrganizationID   string
	OrganizationName string
	Reports          []Report
}

// GroupByOrganization buckets reports by owning organization, in order of
// first appearance. Names come from the given organizations; an unknown
// owner keeps an empty name rather than being dropped.
func GroupByOrganization(reports []Report, organizations []Organization) []ReportGroup {
	names := make(map[string]string, len(organizations))
	for _, org := range organizations {
		names[org.ID] = org.Name
	}

	index := make(map[string]int)
	groups := make([]ReportGroup, 0)
	for _, report := range reports {
		i, ok := index[report.OrganizationID]
		if !ok {
			i = len(groups)
			index[report.OrganizationID] = i
			groups = append(groups, ReportGroup{
				OrganizationID:   report.OrganizationID,
				OrganizationName: names[report.OrganizationID],
			})
		}
		groups[i].Reports = append(groups[i].Reports, report)
	}
	return groups
}

// FilteredView caches the last filter result so dashboards polling an
// unchanged store do not refilter on every render. Not safe for concurrent
// use; each view belongs to one consumer.
type FilteredView struct {
	lastFilter ReportFilter
	lastPrint  string
	lastResult []Report
	valid      bool
}

// fingerprint reduces a report list to its ids and versions. Any create,
// update, delete or reorder changes it.
func fingerprint(reports []Report) string {
	var b strings.Builder
	for _, r := range reports {
		b.WriteString(r.ID)
		b.WriteByte('@')
		b.WriteString(strconv.FormatInt(r.Version, 10))
		b.WriteByte(';')
	}
	return b.String()
}

// Apply filters the reports, reusing the previous result when neither the
// filter nor the list fingerprint changed.
func (v *FilteredView) Apply(reports []Report, filter ReportFilter) []Report {
	fp := fingerprint(reports)
	if v.valid && filter == v.lastFilter && fp == v.lastPrint {
		return v.lastResult
	}
	v.lastFilter = filter
	v.lastPrint = fp
	v.lastResult = FilterReports(reports, filter)
	v.valid = true
	return v.lastResult
}
