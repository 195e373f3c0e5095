package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestStampResolution(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	t.Run("resolved without date gets now", func(t *testing.T) {
		c := Crisis{Status: StatusResolved}
		c.StampResolution(now)
		if assert.NotNil(t, c.DateResolved) {
			assert.True(t, c.DateResolved.Equal(now))
		}
	})

	t.Run("resolved keeps existing date", func(t *testing.T) {
		c := Crisis{Status: StatusResolved, DateResolved: &earlier}
		c.StampResolution(now)
		assert.True(t, c.DateResolved.Equal(earlier))
	})

	t.Run("open keeps caller date", func(t *testing.T) {
		c := Crisis{Status: StatusOpen, DateResolved: &earlier}
		c.StampResolution(now)
		assert.NotNil(t, c.DateResolved)
	})

	t.Run("status match is case sensitive", func(t *testing.T) {
		c := Crisis{Status: "resolved"}
		c.StampResolution(now)
		assert.Nil(t, c.DateResolved)
	})
}

func TestReconcileResolution(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	c := Crisis{Status: StatusOpen, DateResolved: &earlier}
	c.ReconcileResolution(now)
	assert.Nil(t, c.DateResolved)

	c.Status = StatusResolved
	c.ReconcileResolution(now)
	if assert.NotNil(t, c.DateResolved) {
		assert.True(t, c.DateResolved.Equal(now))
	}

	c.ReconcileResolution(now.Add(time.Hour))
	assert.True(t, c.DateResolved.Equal(now))

	c.Status = StatusInProgress
	c.ReconcileResolution(now)
	assert.Nil(t, c.DateResolved)
}

func TestMatchesQuery(t *testing.T) {
	c := Crisis{
		Title:           "Disk full",
		Description:     "Primary volume at 100%",
		ReportedBy:      strPtr("Alice"),
		Resolution:      nil,
		Tags:            []string{"Storage", "prod"},
		AffectedSystems: []string{"DB-01"},
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"disk", true},
		{"DISK FULL", true},
		{"100%", true},
		{"alice", true},
		{"storage", true},
		{"db-0", true},
		{"bob", false},
		{"resolution", false},
		{"storage,prod", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.MatchesQuery(tt.query), "query %q", tt.query)
	}
}

func TestMatchesQueryNilFields(t *testing.T) {
	c := Crisis{Title: "x"}
	assert.False(t, c.MatchesQuery("null"))
	assert.False(t, c.MatchesQuery("y"))
}

func TestCrisisFilterMatches(t *testing.T) {
	c := &Crisis{Severity: "High", Status: "In Progress"}

	assert.True(t, CrisisFilter{}.Matches(c))
	assert.True(t, CrisisFilter{Severity: "high"}.Matches(c))
	assert.True(t, CrisisFilter{Status: "in progress"}.Matches(c))
	assert.True(t, CrisisFilter{Severity: "HIGH", Status: "IN PROGRESS"}.Matches(c))
	assert.False(t, CrisisFilter{Severity: "hig"}.Matches(c))
	assert.False(t, CrisisFilter{Severity: "High", Status: "Open"}.Matches(c))
	assert.True(t, CrisisFilter{}.IsEmpty())
	assert.False(t, CrisisFilter{Status: "Open"}.IsEmpty())
}

func TestSameSequence(t *testing.T) {
	assert.True(t, SameSequence(nil, nil))
	assert.True(t, SameSequence([]string{}, []string{}))
	assert.True(t, SameSequence([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, SameSequence([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, SameSequence([]string{"a"}, []string{"a", "a"}))
	assert.False(t, SameSequence(nil, []string{}))
}

func TestChangedFields(t *testing.T) {
	resolvedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := &Crisis{Title: "a", Status: StatusOpen, Tags: []string{"x", "y"}}
	after := &Crisis{
		Title:        "a",
		Status:       StatusResolved,
		DateResolved: &resolvedAt,
		Resolution:   strPtr("rebooted"),
		Tags:         []string{"y", "x"},
	}

	assert.Equal(t, []string{"status", "dateResolved", "resolution", "tags"}, ChangedFields(before, after))
	assert.Empty(t, ChangedFields(before, before))
}

func TestCloneStrings(t *testing.T) {
	assert.Nil(t, CloneStrings(nil))
	in := []string{"a"}
	out := CloneStrings(in)
	out[0] = "b"
	assert.Equal(t, "a", in[0])
}
