package domain

import (
	"strings"
	"time"
)

// Severity values counted by statistics. Other values are stored as-is.
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Status values counted by statistics. Other values are stored as-is.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// Crisis is the tracked incident record.
type Crisis struct {
	ID              int64
	Title           string
	Description     string
	Severity        string
	Status          string
	DateReported    time.Time
	DateResolved    *time.Time
	Resolution      *string
	ReportedBy      *string
	AssignedTo      *string
	Tags            []string
	AffectedSystems []string
}

// IsResolved reports whether the status is exactly "Resolved".
func (c *Crisis) IsResolved() bool {
	return c.Status == StatusResolved
}

// StampResolution sets DateResolved for a resolved crisis that has none.
// It never clears DateResolved; creation relies on this.
func (c *Crisis) StampResolution(now time.Time) {
	if c.IsResolved() && c.DateResolved == nil {
		resolved := now
		c.DateResolved = &resolved
	}
}

// ReconcileResolution keeps DateResolved set iff the crisis is resolved.
func (c *Crisis) ReconcileResolution(now time.Time) {
	c.StampResolution(now)
	if !c.IsResolved() {
		c.DateResolved = nil
	}
}

// MatchesQuery reports whether query is a case-insensitive substring of any
// text field, tag or affected system. Nil fields never match.
func (c *Crisis) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), q)
	}
	containsPtr := func(s *string) bool {
		return s != nil && contains(*s)
	}

	if contains(c.Title) || contains(c.Description) {
		return true
	}
	if containsPtr(c.ReportedBy) || containsPtr(c.AssignedTo) || containsPtr(c.Resolution) {
		return true
	}
	for _, tag := range c.Tags {
		if contains(tag) {
			return true
		}
	}
	for _, system := range c.AffectedSystems {
		if contains(system) {
			return true
		}
	}
	return false
}

// CrisisFilter holds optional exact-match criteria. Empty means "any".
type CrisisFilter struct {
	Severity string
	Status   string
}

// IsEmpty reports whether no criterion is set.
func (f CrisisFilter) IsEmpty() bool {
	return f.Severity == "" && f.Status == ""
}

// Matches applies case-insensitive exact matching on each set criterion.
func (f CrisisFilter) Matches(c *Crisis) bool {
	if f.Severity != "" && !strings.EqualFold(c.Severity, f.Severity) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(c.Status, f.Status) {
		return false
	}
	return true
}

// SameSequence compares two string lists element by element.
// A nil list and an empty list are not the same sequence.
func SameSequence(a, b []string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ChangedFields lists the names of fields that differ between two versions of a crisis.
func ChangedFields(before, after *Crisis) []string {
	changed := []string{}
	if before.Title != after.Title {
		changed = append(changed, "title")
	}
	if before.Description != after.Description {
		changed = append(changed, "description")
	}
	if before.Severity != after.Severity {
		changed = append(changed, "severity")
	}
	if before.Status != after.Status {
		changed = append(changed, "status")
	}
	if !sameTime(before.DateResolved, after.DateResolved) {
		changed = append(changed, "dateResolved")
	}
	if !sameString(before.Resolution, after.Resolution) {
		changed = append(changed, "resolution")
	}
	if !sameString(before.ReportedBy, after.ReportedBy) {
		changed = append(changed, "reportedBy")
	}
	if !sameString(before.AssignedTo, after.AssignedTo) {
		changed = append(changed, "assignedTo")
	}
	if !SameSequence(before.Tags, after.Tags) {
		changed = append(changed, "tags")
	}
	if !SameSequence(before.AffectedSystems, after.AffectedSystems) {
		changed = append(changed, "affectedSystems")
	}
	return changed
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// CloneStrings copies a list, keeping nil as nil.
func CloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
