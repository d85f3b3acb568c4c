// Package policy maps roles onto capabilities and landing routes. It is pure
// data: adding a role means extending the two tables below. Capability checks
// here are advisory for clients; the API handlers run the same checks
// authoritatively before touching storage.
package policy

import "github.com/paperdesk/paperdesk/internal/model"

// Capability names a permission a role may hold.
type Capability string

const (
	CapCreatePaper   Capability = "createPaper"
	CapPublishPaper  Capability = "publishPaper"
	CapSearchPapers  Capability = "searchPapers"
	CapViewAllPapers Capability = "viewAllPapers"
)

// Route names a client destination.
type Route string

const (
	RouteLogin              Route = "login"
	RouteSignup             Route = "signup"
	RouteStudentDashboard   Route = "student-dashboard"
	RouteAuthorDashboard    Route = "author-dashboard"
	RouteCommitteeDashboard Route = "committee-dashboard"
)

var landingRoutes = map[model.Role]Route{
	model.RoleStudent:   RouteStudentDashboard,
	model.RoleAuthor:    RouteAuthorDashboard,
	model.RoleCommittee: RouteCommitteeDashboard,
}

var grants = map[model.Role][]Capability{
	model.RoleStudent:   {CapSearchPapers, CapViewAllPapers},
	model.RoleAuthor:    {CapCreatePaper, CapSearchPapers, CapViewAllPapers},
	model.RoleCommittee: {CapPublishPaper, CapSearchPapers, CapViewAllPapers},
}

// LandingRoute returns the dashboard a freshly authenticated role lands on.
// Unknown roles fall back to the student dashboard rather than failing login.
func LandingRoute(role model.Role) Route {
	if route, ok := landingRoutes[role]; ok {
		return route
	}
	return RouteStudentDashboard
}

// CanPerform reports whether the role holds the capability. Unknown roles
// hold nothing.
func CanPerform(role model.Role, capability Capability) bool {
	for _, granted := range grants[role] {
		if granted == capability {
			return true
		}
	}
	return false
}
