package repository

import (
	"context"

	"github.com/jhoicas/conecta-api/internal/domain"
)

// Repositories conjunto de repositorios atados a un mismo nivel de acceso.
type Repositories struct {
	Profiles      ProfileRepository
	Workers       WorkerRepository
	Customers     CustomerRepository
	Plans         PlanRepository
	Subscriptions SubscriptionRepository
	Tickets       TicketRepository
	Codes         CodeGenerator

	// Savepoint lo define el Store cuando las consultas comparten una transacción.
	Savepoint func(ctx context.Context, fn func(r Repositories) error) error
}

// Isolated ejecuta fn de forma que su fallo no invalide las demás consultas de la
// operación (SAVEPOINT dentro de la transacción del nivel de usuario).
func (r Repositories) Isolated(ctx context.Context, fn func(r Repositories) error) error {
	if r.Savepoint == nil {
		return fn(r)
	}
	return r.Savepoint(ctx, fn)
}

// Store abre los repositorios con las credenciales que indica access.
// Con TierUser todas las consultas de fn ven solo las filas que permiten las políticas
// del actor; con TierService se omiten. Si fn devuelve error, Run lo devuelve.
type Store interface {
	Run(ctx context.Context, access domain.AccessContext, fn func(r Repositories) error) error
}
