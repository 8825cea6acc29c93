// Package analytics contiene los resúmenes de los paneles de administrador y técnico.
package analytics

import (
	"context"
	"errors"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// DashboardUseCase arma los paneles a partir de las lecturas agregadas.
//
// No accede al almacén directamente; delega en los casos de uso de lectura,
// que ya aplican el nivel de acceso del actor y degradan a vacío ante errores.
type DashboardUseCase struct {
	gate      *access.Gate
	customers *usecase.CustomerUseCase
	workers   *usecase.WorkerUseCase
	tickets   *usecase.TicketUseCase
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(gate *access.Gate, customers *usecase.CustomerUseCase, workers *usecase.WorkerUseCase, tickets *usecase.TicketUseCase) *DashboardUseCase {
	return &DashboardUseCase{gate: gate, customers: customers, workers: workers, tickets: tickets}
}

// AdminSummary clientes y técnicos con sus totales. Solo admin.
//
// Dos lecturas en paralelo:
//  1. customers.List → Customers, TotalCustomers, ActiveCustomers
//  2. workers.List   → Workers, TotalWorkers, ActiveWorkers
func (uc *DashboardUseCase) AdminSummary(ctx context.Context, s *domain.Session) (*dto.AdminDashboardDTO, error) {
	if _, err := uc.gate.Require(ctx, s, entity.RoleAdmin); err != nil {
		return nil, denied(err)
	}

	customersCh := make(chan []dto.CustomerResponse, 1)
	workersCh := make(chan []dto.WorkerResponse, 1)

	go func() { customersCh <- uc.customers.List(ctx, s) }()
	go func() { workersCh <- uc.workers.List(ctx, s) }()

	customers := <-customersCh
	workers := <-workersCh

	out := &dto.AdminDashboardDTO{
		TotalCustomers: len(customers),
		TotalWorkers:   len(workers),
		Customers:      customers,
		Workers:        workers,
	}
	for _, c := range customers {
		if c.IsActive {
			out.ActiveCustomers++
		}
	}
	for _, w := range workers {
		if w.IsActive {
			out.ActiveWorkers++
		}
	}
	return out, nil
}

// WorkerSummary órdenes del técnico y sus clientes (registrados o atendidos) con plan vigente.
//
// Dos lecturas en paralelo:
//  1. tickets.ListForWorker      → Services
//  2. customers.ListServedByWorker → Customers
func (uc *DashboardUseCase) WorkerSummary(ctx context.Context, s *domain.Session) (*dto.WorkerDashboardDTO, error) {
	if _, err := uc.gate.Require(ctx, s, entity.RoleWorker); err != nil {
		return nil, denied(err)
	}

	servicesCh := make(chan []dto.ServiceResponse, 1)
	customersCh := make(chan []dto.WorkerCustomerDTO, 1)

	go func() { servicesCh <- uc.tickets.ListForWorker(ctx, s, s.UserID) }()
	go func() { customersCh <- uc.customers.ListServedByWorker(ctx, s, s.UserID) }()

	return &dto.WorkerDashboardDTO{
		Services:  <-servicesCh,
		Customers: <-customersCh,
	}, nil
}

func denied(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return domain.NewActionError(domain.ErrUnauthorized, "No autorizado", err)
	}
	return domain.NewActionError(domain.ErrForbidden, "", err)
}
