// Package access is the single place where role-based visibility rules live.
// Every rule fails closed: an unknown or missing role sees nothing.
package access

import "muniboard-be/models"

// VisibleIssues returns the subset of issues the principal may see.
// Corporate roles see everything; municipality staff see their own
// municipality; everyone else sees nothing.
func VisibleIssues(p *models.Principal, issues []models.Issue) []models.Issue {
	visible := []models.Issue{}
	if p == nil {
		return visible
	}
	switch p.Role {
	case models.RoleSuperAdmin, models.RoleSystemAdmin:
		visible = append(visible, issues...)
	case models.RoleMunicipalityAdmin, models.RoleManager:
		if p.MunicipalityID == nil {
			return visible
		}
		for _, issue := range issues {
			if issue.MunicipalityID == *p.MunicipalityID {
				visible = append(visible, issue)
			}
		}
	}
	return visible
}

// VisibleUsers returns the subset of users the principal may manage.
// Municipality Admins see their municipality's Managers and Contractors only.
func VisibleUsers(p *models.Principal, users []models.User, roles []models.Role) []models.User {
	visible := []models.User{}
	if p == nil {
		return visible
	}
	switch p.Role {
	case models.RoleSuperAdmin, models.RoleSystemAdmin:
		visible = append(visible, users...)
	case models.RoleMunicipalityAdmin:
		if p.MunicipalityID == nil {
			return visible
		}
		managerID := roleID(roles, models.RoleManager)
		contractorID := roleID(roles, models.RoleContractor)
		for _, u := range users {
			if u.MunicipalityID == nil || *u.MunicipalityID != *p.MunicipalityID {
				continue
			}
			if u.RoleID == managerID || u.RoleID == contractorID {
				visible = append(visible, u)
			}
		}
	}
	return visible
}

func roleID(roles []models.Role, name string) int {
	for _, r := range roles {
		if r.Name == name {
			return r.ID
		}
	}
	return -1
}

func CanManageUsers(p *models.Principal) bool {
	return hasRole(p, models.RoleSuperAdmin, models.RoleSystemAdmin, models.RoleMunicipalityAdmin)
}

func CanManageContractors(p *models.Principal) bool {
	return hasRole(p, models.RoleMunicipalityAdmin, models.RoleManager)
}

func CanViewMunicipalityDashboard(p *models.Principal) bool {
	return hasRole(p, models.RoleMunicipalityAdmin, models.RoleManager)
}

func CanViewCorporateDashboard(p *models.Principal) bool {
	return hasRole(p, models.RoleSuperAdmin, models.RoleSystemAdmin)
}

func hasRole(p *models.Principal, roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
