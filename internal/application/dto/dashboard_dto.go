package dto

// AdminDashboardDTO respuesta de GET /api/dashboard/admin.
type AdminDashboardDTO struct {
	TotalCustomers  int                `json:"total_customers"`
	ActiveCustomers int                `json:"active_customers"`
	TotalWorkers    int                `json:"total_workers"`
	ActiveWorkers   int                `json:"active_workers"`
	Customers       []CustomerResponse `json:"customers"`
	Workers         []WorkerResponse   `json:"workers"`
}

// WorkerDashboardDTO respuesta de GET /api/dashboard/worker.
type WorkerDashboardDTO struct {
	Services  []ServiceResponse   `json:"services"`
	Customers []WorkerCustomerDTO `json:"customers"`
}

// WorkerCustomerDTO cliente del técnico con su plan vigente.
type WorkerCustomerDTO struct {
	ID           string          `json:"id"`
	ProfileID    string          `json:"profile_id"`
	CustomerCode string          `json:"customer_code"`
	RegisteredBy *string         `json:"registered_by,omitempty"`
	Profile      *ProfileSummary `json:"profile,omitempty"`
	Plan         *PlanSummary    `json:"plan"`
}
