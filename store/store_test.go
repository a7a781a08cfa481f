package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"muniboard-be/models"
)

func intPtr(v int) *int { return &v }

func seedDataset() Dataset {
	return Dataset{
		Issues: []models.Issue{
			{ID: 1, ReportedBy: 2, AssignedTo: intPtr(3), MunicipalityID: 1,
				Status:        models.Assigned,
				StatusHistory: []models.StatusEntry{{Status: models.Pending}}},
			{ID: 5, ReportedBy: 2, MunicipalityID: 1,
				Status:        models.Pending,
				StatusHistory: []models.StatusEntry{{Status: models.Pending}}},
		},
		Users: []models.User{
			{ID: 2, Username: "ravi", Email: "ravi@example.com", RoleID: 6},
			{ID: 3, Username: "paveworks", Email: "ops@paveworks.com", RoleID: 5, MunicipalityID: intPtr(1)},
		},
		Roles: []models.Role{
			{ID: 5, Name: models.RoleContractor},
			{ID: 6, Name: models.RoleUser},
		},
		Municipalities: []models.Municipality{{ID: 1, Name: "Riverton"}},
		Categories:     []models.Category{{ID: 1, Name: "Road"}},
		Contractors:    []models.Contractor{{ID: 1, UserID: 3}},
	}
}

func TestSnapshotBeforeLoad(t *testing.T) {
	s := New()
	if _, err := s.Snapshot(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("err = %v, want ErrNotLoaded", err)
	}
	if _, err := s.Issues().List(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("List err = %v, want ErrNotLoaded", err)
	}
}

func TestLoadIsOneShot(t *testing.T) {
	s := New()
	first := `{"issues":[],"users":[{"user_id":1,"username":"first"}]}`
	if err := s.LoadFrom(strings.NewReader(first)); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	second := `{"issues":[],"users":[{"user_id":9,"username":"second"}]}`
	if err := s.LoadFrom(strings.NewReader(second)); err != nil {
		t.Fatalf("second LoadFrom: %v", err)
	}
	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(data.Users) != 1 || data.Users[0].Username != "first" {
		t.Errorf("second load replaced live data: %+v", data.Users)
	}
}

func TestCreateIssueAllocatesMaxPlusOne(t *testing.T) {
	s := NewWithData(seedDataset())
	issue := models.Issue{Title: "Streetlight out", MunicipalityID: 1,
		StatusHistory: []models.StatusEntry{{Status: models.Pending, Timestamp: time.Now()}}}
	if err := s.Issues().Create(context.Background(), &issue); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if issue.ID != 6 {
		t.Errorf("id = %d, want 6 (max existing is 5)", issue.ID)
	}
	got, err := s.Issues().Get(context.Background(), 6)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Streetlight out" {
		t.Errorf("stored title = %q", got.Title)
	}
}

func TestUpdateIssueNotFound(t *testing.T) {
	s := NewWithData(seedDataset())
	if _, err := s.Issues().Update(context.Background(), models.Issue{ID: 99}); !errors.Is(err, ErrIssueNotFound) {
		t.Errorf("err = %v, want ErrIssueNotFound", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewWithData(seedDataset())
	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	data.Issues[0].StatusHistory[0].Status = models.Closed
	*data.Issues[0].AssignedTo = 99

	fresh, _ := s.Snapshot()
	if fresh.Issues[0].StatusHistory[0].Status != models.Pending {
		t.Error("history mutation leaked into the store")
	}
	if *fresh.Issues[0].AssignedTo != 3 {
		t.Error("assignee pointer shared between snapshots")
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := NewWithData(seedDataset())
	u := models.User{Username: "ravi2", Email: "RAVI@example.com", RoleID: 6}
	if err := s.Users().Create(context.Background(), &u); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestGetByEmailCaseInsensitive(t *testing.T) {
	s := NewWithData(seedDataset())
	u, err := s.Users().GetByEmail(context.Background(), "Ravi@Example.COM")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID != 2 {
		t.Errorf("user id = %d, want 2", u.ID)
	}
}

// Deleting a user leaves their issues behind; name lookups degrade instead.
func TestDeleteUserNoCascade(t *testing.T) {
	s := NewWithData(seedDataset())
	if err := s.Users().Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	data, _ := s.Snapshot()
	if len(data.Issues) != 2 {
		t.Fatalf("issues deleted alongside the user: %d left", len(data.Issues))
	}
	if got := data.Username(2); got != "Unknown User" {
		t.Errorf("reporter name = %q, want \"Unknown User\"", got)
	}
	if got := data.AssignedName(intPtr(2)); got != "Unassigned" {
		t.Errorf("assignee name = %q, want \"Unassigned\"", got)
	}
}

func TestContractorLinkUnlink(t *testing.T) {
	s := NewWithData(seedDataset())
	ctx := context.Background()

	if _, err := s.Contractors().Link(ctx, 3); !errors.Is(err, ErrAlreadyLinked) {
		t.Errorf("relink err = %v, want ErrAlreadyLinked", err)
	}

	link, err := s.Contractors().Link(ctx, 2)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if link.ID != 2 || link.UserID != 2 {
		t.Errorf("link = %+v", link)
	}

	if err := s.Contractors().Unlink(ctx, 2); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if err := s.Contractors().Unlink(ctx, 2); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("second unlink err = %v, want ErrLinkNotFound", err)
	}
}

func TestDatasetFallbacks(t *testing.T) {
	data := seedDataset()
	if got := data.RoleName(99); got != "Unknown" {
		t.Errorf("RoleName = %q", got)
	}
	if got := data.MunicipalityName(99); got != "Unknown Municipality" {
		t.Errorf("MunicipalityName = %q", got)
	}
	if got := data.AssignedName(nil); got != "Unassigned" {
		t.Errorf("AssignedName(nil) = %q", got)
	}
	if data.RoleID("Intern") != -1 {
		t.Error("unknown role should resolve to -1")
	}
}
