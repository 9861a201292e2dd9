package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// FilterDimension names one axis of FilterState.
type FilterDimension string

const (
	FilterStatus   FilterDimension = "status"
	FilterCategory FilterDimension = "category"
	FilterPriority FilterDimension = "priority"
)

// FilterAll is the sentinel meaning "no restriction" on a dimension.
const FilterAll = "all"

var ErrUnknownFilterDimension = errors.New("unknown filter dimension")

// FilterState holds the selected values per dimension. An empty selection, or
// one containing FilterAll, does not restrict that dimension. Values are not
// checked against the enums: an unknown value simply matches nothing.
type FilterState struct {
	Status   []string `json:"status"`
	Category []string `json:"category"`
	Priority []string `json:"priority"`
}

func (f *FilterState) selection(dim FilterDimension) (*[]string, error) {
	switch dim {
	case FilterStatus:
		return &f.Status, nil
	case FilterCategory:
		return &f.Category, nil
	case FilterPriority:
		return &f.Priority, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFilterDimension, dim)
}

// Toggle flips membership of value in the dimension's selection. Toggling
// FilterAll clears the dimension.
func (f *FilterState) Toggle(dim FilterDimension, value string) error {
	sel, err := f.selection(dim)
	if err != nil {
		return err
	}
	if value == FilterAll {
		*sel = nil
		return nil
	}
	for i, v := range *sel {
		if v == value {
			*sel = append((*sel)[:i:i], (*sel)[i+1:]...)
			return nil
		}
	}
	*sel = append(*sel, value)
	return nil
}

// Set replaces the dimension's selection with a single value. An empty value
// or FilterAll clears it.
func (f *FilterState) Set(dim FilterDimension, value string) error {
	sel, err := f.selection(dim)
	if err != nil {
		return err
	}
	if value == "" || value == FilterAll {
		*sel = nil
		return nil
	}
	*sel = []string{value}
	return nil
}

// ClearAll resets every dimension to no restriction.
func (f *FilterState) ClearAll() {
	*f = FilterState{}
}

// ActiveCount reports how many dimensions currently restrict results.
func (f FilterState) ActiveCount() int {
	n := 0
	for _, sel := range [][]string{f.Status, f.Category, f.Priority} {
		if restricts(sel) {
			n++
		}
	}
	return n
}

func restricts(sel []string) bool {
	if len(sel) == 0 {
		return false
	}
	for _, v := range sel {
		if v == FilterAll {
			return false
		}
	}
	return true
}

func matches(sel []string, value string) bool {
	if !restricts(sel) {
		return true
	}
	for _, v := range sel {
		if v == value {
			return true
		}
	}
	return false
}

// Matches reports whether issue passes every dimension of f.
func (f FilterState) Matches(issue Issue) bool {
	return matches(f.Status, string(issue.Status)) &&
		matches(f.Category, string(issue.Category)) &&
		matches(f.Priority, string(issue.Priority))
}

// ApplyFilters returns the issues matching f, in their original order.
func ApplyFilters(issues []Issue, f FilterState) []Issue {
	if f.ActiveCount() == 0 {
		out := make([]Issue, len(issues))
		copy(out, issues)
		return out
	}
	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if f.Matches(issue) {
			out = append(out, issue)
		}
	}
	return out
}

// FilterStateFromQuery reads status, category and priority from query
// parameters. Each may be repeated or comma-separated.
func FilterStateFromQuery(q url.Values) FilterState {
	return FilterState{
		Status:   splitQueryValues(q[string(FilterStatus)]),
		Category: splitQueryValues(q[string(FilterCategory)]),
		Priority: splitQueryValues(q[string(FilterPriority)]),
	}
}

func splitQueryValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
