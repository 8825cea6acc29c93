package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Roles de base de datos sobre los que se definen las políticas RLS (ver migraciones).
const (
	roleAnon          = "anon"
	roleAuthenticated = "authenticated"
)

// Store entrega repositorios atados al nivel de acceso pedido.
// El pool se conecta como dueño de las tablas, por eso el nivel de servicio omite RLS.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye el Store con el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Run ejecuta fn con repositorios del nivel indicado.
// TierService: repos sobre el pool; cada sentencia se confirma por separado.
// TierUser: repos sobre una transacción con el rol anon/authenticated y el id del actor
// en request.jwt.claim.sub; se confirma al terminar fn y se revierte si fn falla.
func (s *Store) Run(ctx context.Context, access domain.AccessContext, fn func(r repository.Repositories) error) error {
	if access.Tier == domain.TierService {
		return fn(newRepositories(s.pool))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	role := roleAuthenticated
	if access.IsAnonymous() {
		role = roleAnon
	}
	if _, err := tx.Exec(ctx, `SELECT set_config('request.jwt.claim.sub', $1, true)`, access.ActorID); err != nil {
		return fmt.Errorf("set actor: %w", err)
	}
	// SET no admite parámetros; role es una de las dos constantes de arriba.
	if _, err := tx.Exec(ctx, "SET LOCAL ROLE "+role); err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newRepositories(q Querier) repository.Repositories {
	r := repository.Repositories{
		Profiles:      NewProfileRepository(q),
		Workers:       NewWorkerRepository(q),
		Customers:     NewCustomerRepository(q),
		Plans:         NewPlanRepository(q),
		Subscriptions: NewSubscriptionRepository(q),
		Tickets:       NewTicketRepository(q),
		Codes:         NewCodeGenerator(q),
	}
	if tx, ok := q.(pgx.Tx); ok {
		r.Savepoint = func(ctx context.Context, fn func(repository.Repositories) error) error {
			return savepoint(ctx, tx, fn)
		}
	}
	return r
}

// savepoint ejecuta fn en una transacción anidada (SAVEPOINT). Si fn falla se vuelve al
// savepoint y la transacción externa sigue aceptando sentencias.
func savepoint(ctx context.Context, tx pgx.Tx, fn func(repository.Repositories) error) error {
	nested, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(newRepositories(nested)); err != nil {
		if rbErr := nested.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}
	if err := nested.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
