package analytics

import (
	"testing"
	"time"

	"muniboard-be/models"
)

func intPtr(v int) *int { return &v }

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

var categories = []models.Category{
	{ID: 1, Name: "Road"},
	{ID: 2, Name: "Water"},
	{ID: 3, Name: "Sanitation"},
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, categories, nil)
	if s.Total != 0 {
		t.Errorf("total = %d, want 0", s.Total)
	}
	if s.AvgResolution.Valid {
		t.Error("avg resolution should be the N/A sentinel")
	}
	if got := s.AvgResolution.String(); got != "N/A" {
		t.Errorf("sentinel rendered as %q", got)
	}
	if len(s.ByCategory) != 0 {
		t.Errorf("zero-count categories leaked: %+v", s.ByCategory)
	}
}

// Manager scope scenario: two in-scope issues, one resolved after 2 days.
func TestSummarizeManagerScope(t *testing.T) {
	issues := []models.Issue{
		{
			ID: 1, Status: models.Pending, MunicipalityID: 10, CategoryID: 1,
			CreatedAt: ts("2024-01-05T00:00:00Z"),
			StatusHistory: []models.StatusEntry{
				{Status: models.Pending, Timestamp: ts("2024-01-05T00:00:00Z")},
			},
		},
		{
			ID: 2, Status: models.Resolved, MunicipalityID: 10, CategoryID: 1,
			CreatedAt: ts("2024-01-01T00:00:00Z"),
			UpdatedAt: ts("2024-01-03T00:00:00Z"),
			StatusHistory: []models.StatusEntry{
				{Status: models.Pending, Timestamp: ts("2024-01-01T00:00:00Z")},
				{Status: models.Resolved, Timestamp: ts("2024-01-03T00:00:00Z")},
			},
		},
	}

	s := Summarize(issues, categories, nil)
	if s.Total != 2 {
		t.Errorf("total = %d, want 2", s.Total)
	}
	if s.ByStatus["Pending"] != 1 || s.ByStatus["Resolved"] != 1 {
		t.Errorf("by_status = %+v", s.ByStatus)
	}
	if !s.AvgResolution.Valid || s.AvgResolution.Duration != 48*time.Hour {
		t.Errorf("avg resolution = %+v, want 48h", s.AvgResolution)
	}
	if got := s.AvgResolution.String(); got != "2d 0h" {
		t.Errorf("avg rendered as %q, want \"2d 0h\"", got)
	}
	if len(s.ByCategory) != 1 || s.ByCategory[0] != (Count{Name: "Road", Count: 2}) {
		t.Errorf("by_category = %+v", s.ByCategory)
	}
}

func TestResolutionInstantPrefersResolvedEntry(t *testing.T) {
	issue := models.Issue{
		CreatedAt: ts("2024-01-01T00:00:00Z"),
		UpdatedAt: ts("2024-01-10T00:00:00Z"),
		Status:    models.Closed,
		StatusHistory: []models.StatusEntry{
			{Status: models.Pending, Timestamp: ts("2024-01-01T00:00:00Z")},
			{Status: models.Resolved, Timestamp: ts("2024-01-04T00:00:00Z")},
			{Status: models.Closed, Timestamp: ts("2024-01-06T00:00:00Z")},
		},
	}
	if got := ResolutionInstant(issue); !got.Equal(ts("2024-01-04T00:00:00Z")) {
		t.Errorf("instant = %v, want the Resolved entry", got)
	}
}

func TestResolutionInstantFallsBackToClosedThenUpdatedAt(t *testing.T) {
	closedOnly := models.Issue{
		CreatedAt: ts("2024-01-01T00:00:00Z"),
		UpdatedAt: ts("2024-01-10T00:00:00Z"),
		Status:    models.Closed,
		StatusHistory: []models.StatusEntry{
			{Status: models.Pending, Timestamp: ts("2024-01-01T00:00:00Z")},
			{Status: models.Closed, Timestamp: ts("2024-01-07T00:00:00Z")},
		},
	}
	if got := ResolutionInstant(closedOnly); !got.Equal(ts("2024-01-07T00:00:00Z")) {
		t.Errorf("instant = %v, want the Closed entry", got)
	}

	noEntry := models.Issue{
		CreatedAt: ts("2024-01-01T00:00:00Z"),
		UpdatedAt: ts("2024-01-09T00:00:00Z"),
		Status:    models.Resolved,
		StatusHistory: []models.StatusEntry{
			{Status: models.Pending, Timestamp: ts("2024-01-01T00:00:00Z")},
		},
	}
	if got := ResolutionInstant(noEntry); !got.Equal(ts("2024-01-09T00:00:00Z")) {
		t.Errorf("instant = %v, want updated_at fallback", got)
	}
}

func TestSummarizeTolerantOfEmptyHistory(t *testing.T) {
	issues := []models.Issue{
		{
			ID: 1, Status: models.Resolved,
			CreatedAt: ts("2024-01-01T00:00:00Z"),
		},
	}
	s := Summarize(issues, categories, nil)
	if !s.AvgResolution.Valid || s.AvgResolution.Duration != 0 {
		t.Errorf("avg resolution = %+v, want valid zero duration", s.AvgResolution)
	}
}

func TestByMunicipality(t *testing.T) {
	municipalities := []models.Municipality{
		{ID: 10, Name: "Riverton"},
		{ID: 20, Name: "Lakeside"},
	}
	issues := []models.Issue{
		{ID: 1, Status: models.Pending, MunicipalityID: 10,
			CreatedAt:     ts("2024-01-05T00:00:00Z"),
			StatusHistory: []models.StatusEntry{{Status: models.Pending, Timestamp: ts("2024-01-05T00:00:00Z")}}},
		{ID: 2, Status: models.Resolved, MunicipalityID: 10,
			CreatedAt: ts("2024-01-01T00:00:00Z"),
			StatusHistory: []models.StatusEntry{
				{Status: models.Pending, Timestamp: ts("2024-01-01T00:00:00Z")},
				{Status: models.Resolved, Timestamp: ts("2024-01-03T00:00:00Z")}}},
		{ID: 3, Status: models.Pending, MunicipalityID: 20,
			CreatedAt:     ts("2024-01-06T00:00:00Z"),
			StatusHistory: []models.StatusEntry{{Status: models.Pending, Timestamp: ts("2024-01-06T00:00:00Z")}}},
	}

	rows := ByMunicipality(issues, municipalities)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	riverton := rows[0]
	if riverton.Total != 2 || riverton.Resolved != 1 || riverton.Pending != 1 {
		t.Errorf("riverton = %+v", riverton)
	}
	if !riverton.AvgResolution.Valid || riverton.AvgResolution.Duration != 48*time.Hour {
		t.Errorf("riverton avg = %+v, want 48h", riverton.AvgResolution)
	}
	lakeside := rows[1]
	if lakeside.AvgResolution.Valid {
		t.Errorf("lakeside avg = %+v, want N/A", lakeside.AvgResolution)
	}
}

func TestByContractorCounts(t *testing.T) {
	contractors := []models.User{
		{ID: 5, Username: "paveworks"},
		{ID: 6, Username: "idle_crew"},
	}
	issues := []models.Issue{
		{ID: 1, Status: models.Assigned, AssignedTo: intPtr(5),
			StatusHistory: []models.StatusEntry{{Status: models.Pending}}},
		{ID: 2, Status: models.Assigned, AssignedTo: intPtr(5),
			StatusHistory: []models.StatusEntry{{Status: models.Pending}}},
		{ID: 3, Status: models.Pending, AssignedTo: nil,
			StatusHistory: []models.StatusEntry{{Status: models.Pending}}},
	}
	s := Summarize(issues, categories, contractors)
	if len(s.ByContractor) != 1 {
		t.Fatalf("by_contractor = %+v, want idle crew dropped", s.ByContractor)
	}
	if s.ByContractor[0] != (Count{Name: "paveworks", Count: 2}) {
		t.Errorf("by_contractor[0] = %+v", s.ByContractor[0])
	}
}

func TestLast7Days(t *testing.T) {
	now := ts("2024-03-10T12:00:00Z")
	issues := []models.Issue{
		{ID: 1, CreatedAt: ts("2024-03-10T08:00:00Z")},
		{ID: 2, CreatedAt: ts("2024-03-08T23:59:00Z")},
		{ID: 3, CreatedAt: ts("2024-02-01T00:00:00Z")}, // out of window
	}
	days := Last7Days(issues, now)
	if len(days) != 7 {
		t.Fatalf("days = %d, want 7", len(days))
	}
	if days[6].Date != "2024-03-10" || days[6].Count != 1 {
		t.Errorf("today = %+v", days[6])
	}
	total := 0
	for _, d := range days {
		total += d.Count
	}
	if total != 2 {
		t.Errorf("window total = %d, want 2", total)
	}
}
