package dto

import (
	"time"

	"github.com/spec-kit/crisis-service/internal/domain"
)

// Crisis is the request and response body for a crisis.
type Crisis struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Severity        string     `json:"severity"`
	Status          string     `json:"status"`
	DateReported    time.Time  `json:"dateReported"`
	DateResolved    *time.Time `json:"dateResolved"`
	Resolution      *string    `json:"resolution"`
	ReportedBy      *string    `json:"reportedBy"`
	AssignedTo      *string    `json:"assignedTo"`
	Tags            []string   `json:"tags"`
	AffectedSystems []string   `json:"affectedSystems"`
}

// StatisticsResponse is the aggregate report.
type StatisticsResponse struct {
	Total            int               `json:"total"`
	BySeverity       SeverityCounts    `json:"bySeverity"`
	ByStatus         StatusCounts      `json:"byStatus"`
	RecentlyReported []ReportedSummary `json:"recentlyReported"`
	RecentlyResolved []ResolvedSummary `json:"recentlyResolved"`
	TopTags          []TagCount        `json:"topTags"`
}

// SeverityCounts response.
type SeverityCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// StatusCounts response.
type StatusCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

// ReportedSummary response.
type ReportedSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Severity     string    `json:"severity"`
	Status       string    `json:"status"`
	DateReported time.Time `json:"dateReported"`
}

// ResolvedSummary response.
type ResolvedSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Severity     string    `json:"severity"`
	Status       string    `json:"status"`
	DateResolved time.Time `json:"dateResolved"`
}

// TagCount response.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ToDomain converts a request body into the domain model.
func (c *Crisis) ToDomain() domain.Crisis {
	return domain.Crisis{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Severity:        c.Severity,
		Status:          c.Status,
		DateReported:    c.DateReported,
		DateResolved:    c.DateResolved,
		Resolution:      c.Resolution,
		ReportedBy:      c.ReportedBy,
		AssignedTo:      c.AssignedTo,
		Tags:            c.Tags,
		AffectedSystems: c.AffectedSystems,
	}
}

// FromDomain builds a response body.
func FromDomain(c *domain.Crisis) Crisis {
	return Crisis{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Severity:        c.Severity,
		Status:          c.Status,
		DateReported:    c.DateReported,
		DateResolved:    c.DateResolved,
		Resolution:      c.Resolution,
		ReportedBy:      c.ReportedBy,
		AssignedTo:      c.AssignedTo,
		Tags:            c.Tags,
		AffectedSystems: c.AffectedSystems,
	}
}

// FromDomainList builds a response array, never nil.
func FromDomainList(crises []domain.Crisis) []Crisis {
	out := make([]Crisis, 0, len(crises))
	for i := range crises {
		out = append(out, FromDomain(&crises[i]))
	}
	return out
}

// FromStatistics builds the statistics response.
func FromStatistics(s domain.Statistics) StatisticsResponse {
	resp := StatisticsResponse{
		Total: s.Total,
		BySeverity: SeverityCounts{
			Low:      s.BySeverity.Low,
			Medium:   s.BySeverity.Medium,
			High:     s.BySeverity.High,
			Critical: s.BySeverity.Critical,
		},
		ByStatus: StatusCounts{
			Open:       s.ByStatus.Open,
			InProgress: s.ByStatus.InProgress,
			Resolved:   s.ByStatus.Resolved,
		},
		RecentlyReported: make([]ReportedSummary, 0, len(s.RecentlyReported)),
		RecentlyResolved: make([]ResolvedSummary, 0, len(s.RecentlyResolved)),
		TopTags:          make([]TagCount, 0, len(s.TopTags)),
	}
	for _, r := range s.RecentlyReported {
		resp.RecentlyReported = append(resp.RecentlyReported, ReportedSummary(r))
	}
	for _, r := range s.RecentlyResolved {
		resp.RecentlyResolved = append(resp.RecentlyResolved, ResolvedSummary(r))
	}
	for _, tc := range s.TopTags {
		resp.TopTags = append(resp.TopTags, TagCount(tc))
	}
	return resp
}
