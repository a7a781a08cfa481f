package models

import "time"

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	Assigned   IssueStatus = "Assigned"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
	Closed     IssueStatus = "Closed"
)

// StageOrder is the canonical order of lifecycle stages, used by timelines.
var StageOrder = []IssueStatus{Pending, Assigned, InProgress, Resolved, Closed}

var statusColors = map[IssueStatus]string{
	Pending:    "#FFD700",
	Assigned:   "#1E90FF",
	InProgress: "#FFA500",
	Resolved:   "#32CD32",
	Closed:     "#6B7280",
}

func (s IssueStatus) Valid() bool {
	_, ok := statusColors[s]
	return ok
}

// Color returns the fixed display color for a status.
func (s IssueStatus) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "#9CA3AF"
}

// Priority enum
type Priority string

const (
	Low      Priority = "Low"
	Medium   Priority = "Medium"
	High     Priority = "High"
	Critical Priority = "Critical"
)

func (p Priority) Valid() bool {
	switch p {
	case Low, Medium, High, Critical:
		return true
	}
	return false
}

// StatusEntry is one record of the append-only status history.
type StatusEntry struct {
	Status    IssueStatus `bson:"status" json:"status"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID             int           `bson:"_id" json:"issue_id"`
	ReportedBy     int           `bson:"reported_by" json:"reported_by"`
	CategoryID     int           `bson:"category_id" json:"category_id"`
	MunicipalityID int           `bson:"municipality_id" json:"municipality_id"`
	Title          string        `bson:"title" json:"title"`
	Description    string        `bson:"description" json:"description"`
	Location       string        `bson:"location" json:"location"`
	Latitude       float64       `bson:"latitude" json:"latitude"`
	Longitude      float64       `bson:"longitude" json:"longitude"`
	Status         IssueStatus   `bson:"status" json:"status"`
	StatusColor    string        `bson:"status_color" json:"status_color"`
	Priority       Priority      `bson:"priority" json:"priority"`
	AssignedTo     *int          `bson:"assigned_to,omitempty" json:"assigned_to"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
	ImageURL       string        `bson:"image_url,omitempty" json:"image_url,omitempty"`
	StatusHistory  []StatusEntry `bson:"status_history" json:"status_history"`
}
