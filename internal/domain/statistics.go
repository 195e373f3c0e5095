package domain

import (
	"sort"
	"time"
)

const (
	recentLimit  = 5
	topTagsLimit = 10
)

// Statistics is the aggregate report over all crises.
type Statistics struct {
	Total            int
	BySeverity       SeverityCounts
	ByStatus         StatusCounts
	RecentlyReported []ReportedSummary
	RecentlyResolved []ResolvedSummary
	TopTags          []TagCount
}

// SeverityCounts buckets crises by the fixed severity values.
type SeverityCounts struct {
	Low      int
	Medium   int
	High     int
	Critical int
}

// StatusCounts buckets crises by the fixed status values.
type StatusCounts struct {
	Open       int
	InProgress int
	Resolved   int
}

// ReportedSummary projects a crisis for the recently reported list.
type ReportedSummary struct {
	ID           int64
	Title        string
	Severity     string
	Status       string
	DateReported time.Time
}

// ResolvedSummary projects a crisis for the recently resolved list.
type ResolvedSummary struct {
	ID           int64
	Title        string
	Severity     string
	Status       string
	DateResolved time.Time
}

// TagCount is a tag and the number of occurrences across all crises.
type TagCount struct {
	Tag   string
	Count int
}

// ComputeStatistics aggregates crises given in store order. Ties in every
// ordering keep that order.
func ComputeStatistics(crises []Crisis) Statistics {
	stats := Statistics{
		Total:            len(crises),
		RecentlyReported: []ReportedSummary{},
		RecentlyResolved: []ResolvedSummary{},
		TopTags:          []TagCount{},
	}

	for i := range crises {
		switch crises[i].Severity {
		case SeverityLow:
			stats.BySeverity.Low++
		case SeverityMedium:
			stats.BySeverity.Medium++
		case SeverityHigh:
			stats.BySeverity.High++
		case SeverityCritical:
			stats.BySeverity.Critical++
		}
		switch crises[i].Status {
		case StatusOpen:
			stats.ByStatus.Open++
		case StatusInProgress:
			stats.ByStatus.InProgress++
		case StatusResolved:
			stats.ByStatus.Resolved++
		}
	}

	reported := make([]*Crisis, 0, len(crises))
	resolved := make([]*Crisis, 0, len(crises))
	for i := range crises {
		reported = append(reported, &crises[i])
		if crises[i].DateResolved != nil {
			resolved = append(resolved, &crises[i])
		}
	}

	sort.SliceStable(reported, func(i, j int) bool {
		return reported[i].DateReported.After(reported[j].DateReported)
	})
	for _, c := range reported[:min(recentLimit, len(reported))] {
		stats.RecentlyReported = append(stats.RecentlyReported, ReportedSummary{
			ID:           c.ID,
			Title:        c.Title,
			Severity:     c.Severity,
			Status:       c.Status,
			DateReported: c.DateReported,
		})
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].DateResolved.After(*resolved[j].DateResolved)
	})
	for _, c := range resolved[:min(recentLimit, len(resolved))] {
		stats.RecentlyResolved = append(stats.RecentlyResolved, ResolvedSummary{
			ID:           c.ID,
			Title:        c.Title,
			Severity:     c.Severity,
			Status:       c.Status,
			DateResolved: *c.DateResolved,
		})
	}

	stats.TopTags = topTags(crises, topTagsLimit)
	return stats
}

func topTags(crises []Crisis, limit int) []TagCount {
	index := map[string]int{}
	counts := []TagCount{}
	for i := range crises {
		for _, tag := range crises[i].Tags {
			pos, seen := index[tag]
			if !seen {
				index[tag] = len(counts)
				counts = append(counts, TagCount{Tag: tag, Count: 1})
				continue
			}
			counts[pos].Count++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
