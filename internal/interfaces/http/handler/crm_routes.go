package handler

import (
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// CRMRoutes creates the route group for leads, clients, projects and appointments
func CRMRoutes(leads *LeadHandler, clients *ClientHandler, projects *ProjectHandler, appointments *AppointmentHandler) *router.DomainGroup {
	write := middleware.RequireAdminAccess()
	g := router.NewDomainGroup("crm", "/crm")

	g.GET("/leads", leads.List)
	g.GET("/leads/stats", leads.Stats)
	g.POST("/leads", write, leads.Create)
	g.GET("/leads/:id", leads.Get)
	g.PUT("/leads/:id", write, leads.Update)
	g.DELETE("/leads/:id", write, leads.Delete)
	g.POST("/leads/:id/convert", write, leads.Convert)
	g.GET("/leads/:id/activities", leads.Activities)
	g.POST("/leads/:id/notes", write, leads.AddNote)

	g.GET("/clients", clients.List)
	g.POST("/clients", write, clients.Create)
	g.GET("/clients/:id", clients.Get)
	g.PUT("/clients/:id", write, clients.Update)
	g.DELETE("/clients/:id", write, clients.Delete)
	g.GET("/clients/:id/balance", clients.Balance)
	g.GET("/clients/:id/payments", clients.Payments)

	project := middleware.RequireResource(identity.ResourceProjects)
	g.GET("/projects", project, projects.List)
	g.POST("/projects", project, projects.Create)
	g.GET("/projects/:id", project, projects.Get)
	g.PUT("/projects/:id", project, projects.Update)
	g.DELETE("/projects/:id", project, projects.Delete)
	g.PUT("/projects/:id/status", project, projects.ChangeStatus)
	g.GET("/projects/:id/activities", project, projects.Activities)
	g.POST("/projects/:id/tasks", project, projects.AddTask)
	g.POST("/projects/:id/tasks/reorder", project, projects.ReorderTasks)
	g.PUT("/projects/:id/tasks/:taskId", project, projects.UpdateTask)
	g.DELETE("/projects/:id/tasks/:taskId", project, projects.DeleteTask)
	g.POST("/projects/:id/checklist", project, projects.AddChecklistItem)
	g.PUT("/projects/:id/checklist/:itemId", project, projects.UpdateChecklistItem)
	g.DELETE("/projects/:id/checklist/:itemId", project, projects.DeleteChecklistItem)
	g.POST("/projects/:id/journal", project, projects.AddJournalEntry)
	g.DELETE("/projects/:id/journal/:entryId", project, projects.DeleteJournalEntry)
	g.POST("/projects/:id/media", project, projects.AddMedia)
	g.DELETE("/projects/:id/media/:mediaId", project, projects.DeleteMedia)

	g.GET("/appointments", appointments.List)
	g.POST("/appointments", write, appointments.Create)
	g.GET("/appointments/:id", appointments.Get)
	g.PUT("/appointments/:id", write, appointments.Update)
	g.PUT("/appointments/:id/status", write, appointments.ChangeStatus)
	g.DELETE("/appointments/:id", write, appointments.Delete)
	return g
}
