// Package analytics computes dashboard statistics over a scoped issue subset.
package analytics

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"muniboard-be/models"
)

// AvgResolution is the mean resolution duration. Valid is false when no
// issue in scope qualifies, rendered as "N/A".
type AvgResolution struct {
	Valid    bool
	Duration time.Duration
}

func (a AvgResolution) String() string {
	if !a.Valid {
		return "N/A"
	}
	return FormatDaysHours(a.Duration)
}

func (a AvgResolution) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.String())), nil
}

// FormatDaysHours renders a duration as a calendar day-and-hour breakdown.
func FormatDaysHours(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	ByCategory    []Count        `json:"by_category"`
	ByContractor  []Count        `json:"by_contractor"`
	AvgResolution AvgResolution  `json:"avg_resolution_time"`
}

// Summarize computes counts and the mean resolution time over the given
// issue subset. Categories are iterated from the full taxonomy; contractors
// are the already-scoped contractor users. Zero rows are dropped and the
// breakdowns are sorted descending, as the dashboards display them.
func Summarize(issues []models.Issue, categories []models.Category, contractors []models.User) Summary {
	s := Summary{
		Total:    len(issues),
		ByStatus: map[string]int{},
	}

	for _, issue := range issues {
		s.ByStatus[string(issue.Status)]++
	}

	for _, cat := range categories {
		n := 0
		for _, issue := range issues {
			if issue.CategoryID == cat.ID {
				n++
			}
		}
		if n > 0 {
			s.ByCategory = append(s.ByCategory, Count{Name: cat.Name, Count: n})
		}
	}
	sortCounts(s.ByCategory)

	for _, con := range contractors {
		n := 0
		for _, issue := range issues {
			if issue.AssignedTo != nil && *issue.AssignedTo == con.ID {
				n++
			}
		}
		if n > 0 {
			s.ByContractor = append(s.ByContractor, Count{Name: con.Username, Count: n})
		}
	}
	sortCounts(s.ByContractor)

	s.AvgResolution = averageResolution(issues)
	return s
}

func sortCounts(counts []Count) {
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
}

func resolvedOrClosed(status models.IssueStatus) bool {
	return status == models.Resolved || status == models.Closed
}

// ResolutionInstant is the moment an issue counts as resolved: the first
// history entry with status Resolved, else Closed, else the last-update
// timestamp. An empty history violates the seeding invariant; it is logged
// and treated as zero duration rather than crashing the aggregation.
func ResolutionInstant(issue models.Issue) time.Time {
	if len(issue.StatusHistory) == 0 {
		log.Printf("issue %d has empty status history", issue.ID)
		return issue.CreatedAt
	}
	for _, entry := range issue.StatusHistory {
		if entry.Status == models.Resolved {
			return entry.Timestamp
		}
	}
	for _, entry := range issue.StatusHistory {
		if entry.Status == models.Closed {
			return entry.Timestamp
		}
	}
	return issue.UpdatedAt
}

func averageResolution(issues []models.Issue) AvgResolution {
	var durations []float64
	for _, issue := range issues {
		if !resolvedOrClosed(issue.Status) {
			continue
		}
		durations = append(durations, ResolutionInstant(issue).Sub(issue.CreatedAt).Seconds())
	}
	mean, err := stats.Mean(durations)
	if err != nil {
		// stats.Mean errors only on empty input: nothing qualifies.
		return AvgResolution{}
	}
	return AvgResolution{Valid: true, Duration: time.Duration(mean * float64(time.Second))}
}

// MunicipalityStat is one row of the corporate dashboard table.
type MunicipalityStat struct {
	ID            int           `json:"municipality_id"`
	Name          string        `json:"name"`
	Total         int           `json:"total"`
	Resolved      int           `json:"resolved"`
	Pending       int           `json:"pending"`
	AvgResolution AvgResolution `json:"avg_resolution_time"`
}

// ByMunicipality repeats the resolution metrics scoped per municipality.
func ByMunicipality(issues []models.Issue, municipalities []models.Municipality) []MunicipalityStat {
	rows := make([]MunicipalityStat, 0, len(municipalities))
	for _, m := range municipalities {
		var subset []models.Issue
		for _, issue := range issues {
			if issue.MunicipalityID == m.ID {
				subset = append(subset, issue)
			}
		}
		resolved := 0
		for _, issue := range subset {
			if resolvedOrClosed(issue.Status) {
				resolved++
			}
		}
		rows = append(rows, MunicipalityStat{
			ID:            m.ID,
			Name:          m.Name,
			Total:         len(subset),
			Resolved:      resolved,
			Pending:       len(subset) - resolved,
			AvgResolution: averageResolution(subset),
		})
	}
	return rows
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Last7Days counts issues created per calendar day over the trailing week.
func Last7Days(issues []models.Issue, now time.Time) []DayCount {
	out := make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		next := day.AddDate(0, 0, 1)
		n := 0
		for _, issue := range issues {
			if !issue.CreatedAt.Before(day) && issue.CreatedAt.Before(next) {
				n++
			}
		}
		out = append(out, DayCount{Date: day.Format("2006-01-02"), Count: n})
	}
	return out
}

// OpenCount counts issues not yet resolved or closed.
func OpenCount(issues []models.Issue) int {
	n := 0
	for _, issue := range issues {
		if !resolvedOrClosed(issue.Status) {
			n++
		}
	}
	return n
}
