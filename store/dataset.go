package store

import "muniboard-be/models"

// Dataset is the normalized snapshot document loaded once at startup.
type Dataset struct {
	Issues         []models.Issue        `json:"issues"`
	Users          []models.User         `json:"users"`
	Roles          []models.Role         `json:"roles"`
	Municipalities []models.Municipality `json:"municipalities"`
	Categories     []models.Category     `json:"categories"`
	Contractors    []models.Contractor   `json:"contractors"`
}

// clone deep-copies the snapshot so mutations never alias a published one.
func (d Dataset) clone() Dataset {
	out := Dataset{
		Issues:         make([]models.Issue, len(d.Issues)),
		Users:          append([]models.User(nil), d.Users...),
		Roles:          append([]models.Role(nil), d.Roles...),
		Municipalities: append([]models.Municipality(nil), d.Municipalities...),
		Categories:     append([]models.Category(nil), d.Categories...),
		Contractors:    append([]models.Contractor(nil), d.Contractors...),
	}
	for i, issue := range d.Issues {
		issue.StatusHistory = append([]models.StatusEntry(nil), issue.StatusHistory...)
		if issue.AssignedTo != nil {
			assigned := *issue.AssignedTo
			issue.AssignedTo = &assigned
		}
		out.Issues[i] = issue
	}
	return out
}

// RoleName resolves a role id, degrading to "Unknown" for stale references.
func (d Dataset) RoleName(id int) string {
	for _, r := range d.Roles {
		if r.ID == id {
			return r.Name
		}
	}
	return "Unknown"
}

func (d Dataset) RoleID(name string) int {
	for _, r := range d.Roles {
		if r.Name == name {
			return r.ID
		}
	}
	return -1
}

func (d Dataset) CategoryName(id int) string {
	for _, c := range d.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Unknown"
}

func (d Dataset) CategoryExists(id int) bool {
	for _, c := range d.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (d Dataset) MunicipalityName(id int) string {
	for _, m := range d.Municipalities {
		if m.ID == id {
			return m.Name
		}
	}
	return "Unknown Municipality"
}

func (d Dataset) UserByID(id int) *models.User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// Username degrades to "Unknown User" when the reporter was deleted.
func (d Dataset) Username(id int) string {
	if u := d.UserByID(id); u != nil {
		return u.Username
	}
	return "Unknown User"
}

// AssignedName degrades to "Unassigned" for nil or stale assignments.
func (d Dataset) AssignedName(id *int) string {
	if id == nil {
		return "Unassigned"
	}
	if u := d.UserByID(*id); u != nil {
		return u.Username
	}
	return "Unassigned"
}

func (d Dataset) IsContractor(userID int) bool {
	for _, c := range d.Contractors {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

func (d Dataset) nextIssueID() int {
	max := 0
	for _, issue := range d.Issues {
		if issue.ID > max {
			max = issue.ID
		}
	}
	return max + 1
}

func (d Dataset) nextUserID() int {
	max := 0
	for _, u := range d.Users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func (d Dataset) nextContractorID() int {
	max := 0
	for _, c := range d.Contractors {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}
