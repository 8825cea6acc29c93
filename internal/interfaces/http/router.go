package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appanalytics "github.com/jhoicas/conecta-api/internal/application/analytics"
	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/auth"
	"github.com/jhoicas/conecta-api/internal/application/provisioning"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	Provisioning *provisioning.Service
	CustomerUC   *usecase.CustomerUseCase
	WorkerUC     *usecase.WorkerUseCase
	PlanUC       *usecase.PlanUseCase
	TicketUC     *usecase.TicketUseCase
	Dashboard    *appanalytics.DashboardUseCase
	Gate         *access.Gate
	// Gatherer expone /metrics; nil lo desactiva.
	Gatherer prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.AuthUC)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", requireAuth, authHandler.Logout)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Planes (público; con sesión se lee como el actor)
	planHandler := NewPlanHandler(deps.PlanUC)
	api.Get("/plans", OptionalAuth(deps.AuthUC), planHandler.List)

	// Clientes
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.Provisioning)
	customers := api.Group("/customers", requireAuth)
	customers.Post("/", customerHandler.Register)
	customers.Get("/", customerHandler.List)
	customers.Get("/by-profile/:profileId/plan", customerHandler.CurrentPlan)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Patch("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	// Técnicos
	workerHandler := NewWorkerHandler(deps.WorkerUC, deps.CustomerUC, deps.TicketUC, deps.Provisioning)
	workers := api.Group("/workers", requireAuth)
	workers.Post("/", RequireRole(deps.Gate, entity.RoleAdmin), workerHandler.Register)
	workers.Get("/", workerHandler.List)
	workers.Patch("/:id", RequireRole(deps.Gate, entity.RoleAdmin), workerHandler.Update)
	workers.Get("/:profileId/customers", workerHandler.ListCustomers)
	workers.Post("/:profileId/customers", workerHandler.AssignCustomer)
	workers.Get("/:profileId/services", workerHandler.ListServices)

	// Órdenes de servicio
	serviceHandler := NewServiceHandler(deps.TicketUC)
	api.Patch("/services/:id/status", requireAuth, serviceHandler.UpdateStatus)

	// Paneles
	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.Get("/admin", RequireRole(deps.Gate, entity.RoleAdmin), dashboardHandler.Admin)
	dashboard.Get("/worker", RequireRole(deps.Gate, entity.RoleWorker), dashboardHandler.Worker)
}
