// Package testutil dobles en memoria de los puertos de persistencia e identidad
// para probar los casos de uso sin PostgreSQL ni proveedor de identidad.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

// ErrPermissionDenied lo devuelve el Store en memoria cuando el nivel de usuario
// intenta una escritura que las políticas no conceden.
var ErrPermissionDenied = errors.New("permission denied")

// ErrTxAborted lo devuelve toda sentencia del nivel de usuario posterior a un fallo
// dentro de la misma transacción, igual que PostgreSQL (25P02).
var ErrTxAborted = errors.New("current transaction is aborted, commands ignored until end of transaction block")

// txState estado de la transacción emulada del nivel de usuario.
type txState struct {
	aborted bool
}

var _ repository.Store = (*Store)(nil)

// Store almacén en memoria con las mismas políticas de fila que las migraciones.
// Registra el nivel de acceso de cada Run y cuántas veces se llamó cada operación
// ("profiles.ListByIDs", "customers.List", ...).
type Store struct {
	mu sync.Mutex

	profiles      map[string]*entity.Profile
	workers       map[string]*entity.Worker
	customers     map[string]*entity.Customer
	plans         map[string]*entity.Plan
	subscriptions map[string]*entity.Subscription
	tickets       map[string]*entity.Ticket

	accesses []domain.AccessContext
	calls    map[string]int
	failures map[string]error

	// CodesUnavailable hace que los generadores de código devuelvan "".
	CodesUnavailable bool

	seq   int
	clock time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		profiles:      map[string]*entity.Profile{},
		workers:       map[string]*entity.Worker{},
		customers:     map[string]*entity.Customer{},
		plans:         map[string]*entity.Plan{},
		subscriptions: map[string]*entity.Subscription{},
		tickets:       map[string]*entity.Ticket{},
		calls:         map[string]int{},
		failures:      map[string]error{},
		clock:         time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

// Run entrega repositorios que aplican las políticas de access. En el nivel de usuario
// emula la transacción: tras un fallo inyectado las demás sentencias fallan y Run
// devuelve ErrTxAborted salvo que el fallo ocurriera dentro de un savepoint.
func (s *Store) Run(_ context.Context, access domain.AccessContext, fn func(r repository.Repositories) error) error {
	s.mu.Lock()
	s.accesses = append(s.accesses, access)
	s.mu.Unlock()

	v := &view{s: s, access: access}
	if access.Tier == domain.TierUser {
		v.tx = &txState{}
	}
	if err := fn(s.repositories(v)); err != nil {
		return err
	}
	if v.aborted() {
		return ErrTxAborted
	}
	return nil
}

func (s *Store) repositories(v *view) repository.Repositories {
	r := repository.Repositories{
		Profiles:      profileRepo{v},
		Workers:       workerRepo{v},
		Customers:     customerRepo{v},
		Plans:         planRepo{v},
		Subscriptions: subscriptionRepo{v},
		Tickets:       ticketRepo{v},
		Codes:         codeGen{v},
	}
	if v.tx != nil {
		r.Savepoint = func(_ context.Context, fn func(repository.Repositories) error) error {
			if v.aborted() {
				return ErrTxAborted
			}
			s.mu.Lock()
			s.calls["savepoint"]++
			s.mu.Unlock()
			// el savepoint descarta su propio fallo; la transacción externa sigue viva
			return fn(s.repositories(&view{s: s, access: v.access, tx: &txState{}}))
		}
	}
	return r
}

// FailOn hace que la operación op devuelva err en adelante.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Calls veces que se invocó op.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// ResetCalls limpia contadores y accesos registrados (no los datos).
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
	s.accesses = nil
}

// Accesses niveles de acceso usados, en orden.
func (s *Store) Accesses() []domain.AccessContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AccessContext(nil), s.accesses...)
}

// UsedTier indica si algún Run usó tier.
func (s *Store) UsedTier(tier domain.Tier) bool {
	for _, a := range s.Accesses() {
		if a.Tier == tier {
			return true
		}
	}
	return false
}

// ---- siembra de datos ----

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

// AddProfile inserta un perfil con id generado.
func (s *Store) AddProfile(role, email, fullName string) *entity.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	p := &entity.Profile{ID: s.nextID("prof"), Email: email, FullName: fullName, Role: role, CreatedAt: now, UpdatedAt: now}
	s.profiles[p.ID] = p
	return clone(p)
}

// AddWorker inserta un técnico activo para profileID.
func (s *Store) AddWorker(profileID, position string) *entity.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	w := &entity.Worker{
		ID: s.nextID("wrk"), ProfileID: profileID, EmployeeCode: fmt.Sprintf("EMP-%05d", s.seq),
		HireDate: now, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	if position != "" {
		w.Position = &position
	}
	s.workers[w.ID] = w
	return clone(w)
}

// AddCustomer inserta un cliente activo. registeredBy vacío = sin técnico.
func (s *Store) AddCustomer(profileID, registeredBy string) *entity.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	c := &entity.Customer{
		ID: s.nextID("cus"), ProfileID: profileID, CustomerCode: fmt.Sprintf("CUS-%05d", s.seq),
		Address: "Av. Grau 100", City: "Lima", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	if registeredBy != "" {
		c.RegisteredBy = &registeredBy
	}
	s.customers[c.ID] = c
	return clone(c)
}

// AddPlan inserta un plan.
func (s *Store) AddPlan(name, price string, active bool) *entity.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Plan{
		ID: s.nextID("plan"), Name: name, Price: decimal.RequireFromString(price),
		Features: []string{"Internet fibra óptica"}, IsActive: active, CreatedAt: s.tick(),
	}
	s.plans[p.ID] = p
	return clone(p)
}

// AddSubscription inserta una suscripción activa.
func (s *Store) AddSubscription(customerID, planID string) *entity.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &entity.Subscription{ID: s.nextID("sub"), CustomerID: customerID, PlanID: planID, Status: entity.SubscriptionActive, CreatedAt: s.tick()}
	s.subscriptions[sub.ID] = sub
	return clone(sub)
}

// AddTicket inserta un ticket. workerID o customerID vacíos = NULL.
func (s *Store) AddTicket(title, workerID, customerID, status, priority string) *entity.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &entity.Ticket{ID: s.nextID("tkt"), Title: title, Description: title, Status: status, Priority: priority, CreatedAt: s.tick()}
	if workerID != "" {
		t.AssignedWorker = &workerID
	}
	if customerID != "" {
		t.CustomerID = &customerID
	}
	s.tickets[t.ID] = t
	return clone(t)
}

// ---- lectura directa para aserciones (sin políticas) ----

// Profile devuelve el perfil o nil.
func (s *Store) Profile(id string) *entity.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrNil(s.profiles[id])
}

// Customer devuelve el cliente o nil.
func (s *Store) Customer(id string) *entity.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrNil(s.customers[id])
}

// Ticket devuelve el ticket o nil.
func (s *Store) Ticket(id string) *entity.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrNil(s.tickets[id])
}

// WorkerByProfile devuelve el técnico del perfil o nil.
func (s *Store) WorkerByProfile(profileID string) *entity.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		if w.ProfileID == profileID {
			return clone(w)
		}
	}
	return nil
}

// CustomerByProfile devuelve el cliente del perfil o nil.
func (s *Store) CustomerByProfile(profileID string) *entity.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.ProfileID == profileID {
			return clone(c)
		}
	}
	return nil
}

// SubscriptionsOf suscripciones del cliente.
func (s *Store) SubscriptionsOf(customerID string) []*entity.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Subscription
	for _, sub := range s.subscriptions {
		if sub.CustomerID == customerID {
			out = append(out, clone(sub))
		}
	}
	return out
}

// Counts número de filas por tabla.
func (s *Store) Counts() (profiles, workers, customers, subscriptions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles), len(s.workers), len(s.customers), len(s.subscriptions)
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func cloneOrNil[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return clone(v)
}

func sortNewestFirst[T any](list []*T, createdAt func(*T) time.Time) {
	sort.SliceStable(list, func(i, j int) bool { return createdAt(list[i]).After(createdAt(list[j])) })
}
