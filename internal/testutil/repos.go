package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

// view repositorios atados a un nivel de acceso. Los métodos toman s.mu.
type view struct {
	s      *Store
	access domain.AccessContext
	tx     *txState // nil en el nivel de servicio
}

// begin registra la llamada y devuelve el fallo inyectado, si hay. Debe llamarse con s.mu tomado.
func (v *view) begin(op string) error {
	v.s.calls[op]++
	if v.tx != nil && v.tx.aborted {
		return ErrTxAborted
	}
	err := v.s.failures[op]
	if err != nil && v.tx != nil {
		v.tx.aborted = true
	}
	return err
}

func (v *view) aborted() bool {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.tx != nil && v.tx.aborted
}

func (v *view) service() bool { return v.access.Tier == domain.TierService }

func (v *view) uid() string { return v.access.ActorID }

func (v *view) isAdmin() bool {
	p, ok := v.s.profiles[v.uid()]
	return ok && p.Role == entity.RoleAdmin
}

func (v *view) workerID() string {
	for _, w := range v.s.workers {
		if w.ProfileID != "" && w.ProfileID == v.uid() {
			return w.ID
		}
	}
	return ""
}

func (v *view) servesCustomer(c *entity.Customer) bool {
	wid := v.workerID()
	if wid == "" {
		return false
	}
	if c.RegisteredBy != nil && *c.RegisteredBy == wid {
		return true
	}
	for _, t := range v.s.tickets {
		if t.CustomerID != nil && *t.CustomerID == c.ID && t.AssignedWorker != nil && *t.AssignedWorker == wid {
			return true
		}
	}
	return false
}

// Políticas de lectura (ver 00003_row_level_security.sql).

func (v *view) canSeeProfile(p *entity.Profile) bool {
	if v.service() {
		return true
	}
	if v.uid() == "" {
		return false
	}
	if p.ID == v.uid() || v.isAdmin() {
		return true
	}
	for _, c := range v.s.customers {
		if c.ProfileID == p.ID && v.servesCustomer(c) {
			return true
		}
	}
	return false
}

func (v *view) canSeeWorker(w *entity.Worker) bool {
	if v.service() {
		return true
	}
	return v.uid() != "" && (w.ProfileID == v.uid() || v.isAdmin())
}

func (v *view) canSeeCustomer(c *entity.Customer) bool {
	if v.service() {
		return true
	}
	return v.uid() != "" && (c.ProfileID == v.uid() || v.isAdmin() || v.servesCustomer(c))
}

func (v *view) canSeePlan(p *entity.Plan) bool {
	return v.service() || p.IsActive || (v.uid() != "" && v.isAdmin())
}

func (v *view) canSeeSubscription(sub *entity.Subscription) bool {
	if v.service() {
		return true
	}
	c, ok := v.s.customers[sub.CustomerID]
	return ok && v.canSeeCustomer(c)
}

func (v *view) canSeeTicket(t *entity.Ticket) bool {
	if v.service() {
		return true
	}
	if v.uid() == "" {
		return false
	}
	if v.isAdmin() {
		return true
	}
	if wid := v.workerID(); wid != "" && t.AssignedWorker != nil && *t.AssignedWorker == wid {
		return true
	}
	if t.CustomerID != nil {
		if c, ok := v.s.customers[*t.CustomerID]; ok && c.ProfileID == v.uid() {
			return true
		}
	}
	return false
}

func (v *view) denyInsert() error {
	if v.service() {
		return nil
	}
	return fmt.Errorf("insert: %w", ErrPermissionDenied)
}

// ---- profiles ----

type profileRepo struct{ v *view }

func (r profileRepo) Create(_ context.Context, p *entity.Profile) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("profiles.Create"); err != nil {
		return err
	}
	if err := r.v.denyInsert(); err != nil {
		return err
	}
	if _, ok := s.profiles[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range s.profiles {
		if other.Email == p.Email {
			return domain.ErrDuplicate
		}
	}
	now := s.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	s.profiles[p.ID] = clone(p)
	return nil
}

func (r profileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("profiles.GetByID"); err != nil {
		return nil, err
	}
	if p, ok := s.profiles[id]; ok && r.v.canSeeProfile(p) {
		return clone(p), nil
	}
	return nil, nil
}

func (r profileRepo) GetByEmail(_ context.Context, email string) (*entity.Profile, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("profiles.GetByEmail"); err != nil {
		return nil, err
	}
	for _, p := range s.profiles {
		if p.Email == email && r.v.canSeeProfile(p) {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (r profileRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Profile, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("profiles.ListByIDs"); err != nil {
		return nil, err
	}
	var out []*entity.Profile
	for _, id := range unique(ids) {
		if p, ok := s.profiles[id]; ok && r.v.canSeeProfile(p) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r profileRepo) Delete(_ context.Context, id string) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("profiles.Delete"); err != nil {
		return err
	}
	if !r.v.service() {
		return ErrPermissionDenied
	}
	delete(s.profiles, id)
	// ON DELETE CASCADE
	for wid, w := range s.workers {
		if w.ProfileID == id {
			delete(s.workers, wid)
		}
	}
	for cid, c := range s.customers {
		if c.ProfileID == id {
			delete(s.customers, cid)
		}
	}
	return nil
}

// ---- workers ----

type workerRepo struct{ v *view }

func (r workerRepo) Create(_ context.Context, w *entity.Worker) (*entity.Worker, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("workers.Create"); err != nil {
		return nil, err
	}
	if err := r.v.denyInsert(); err != nil {
		return nil, err
	}
	if _, ok := s.profiles[w.ProfileID]; !ok {
		return nil, fmt.Errorf("insert worker: violates foreign key workers_profile_id_fkey")
	}
	for _, other := range s.workers {
		if other.ProfileID == w.ProfileID || other.EmployeeCode == w.EmployeeCode {
			return nil, domain.ErrDuplicate
		}
	}
	created := clone(w)
	created.ID = s.nextID("wrk")
	now := s.tick()
	created.CreatedAt, created.UpdatedAt = now, now
	s.workers[created.ID] = created
	return clone(created), nil
}

func (r workerRepo) GetByProfileID(_ context.Context, profileID string) (*entity.Worker, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("workers.GetByProfileID"); err != nil {
		return nil, err
	}
	for _, w := range s.workers {
		if w.ProfileID == profileID && r.v.canSeeWorker(w) {
			return clone(w), nil
		}
	}
	return nil, nil
}

func (r workerRepo) List(_ context.Context, f repository.WorkerFilter) ([]*entity.Worker, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("workers.List"); err != nil {
		return nil, err
	}
	var out []*entity.Worker
	for _, w := range s.workers {
		if !r.v.canSeeWorker(w) {
			continue
		}
		if f.Position != "" && (w.Position == nil || *w.Position != f.Position) {
			continue
		}
		if f.ActiveOnly && !w.IsActive {
			continue
		}
		out = append(out, clone(w))
	}
	sortNewestFirst(out, func(w *entity.Worker) time.Time { return w.CreatedAt })
	return out, nil
}

func (r workerRepo) Update(_ context.Context, id string, patch entity.WorkerPatch) (*entity.Worker, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("workers.Update"); err != nil {
		return nil, err
	}
	w, ok := s.workers[id]
	if !ok || !r.v.canSeeWorker(w) || !(r.v.service() || r.v.isAdmin()) {
		return nil, domain.ErrNotFound
	}
	if patch.Department != nil {
		w.Department = patch.Department
	}
	if patch.Position != nil {
		w.Position = patch.Position
	}
	if patch.IsActive != nil {
		w.IsActive = *patch.IsActive
	}
	w.UpdatedAt = s.tick()
	return clone(w), nil
}

// ---- customers ----

type customerRepo struct{ v *view }

func (r customerRepo) Create(_ context.Context, c *entity.Customer) (*entity.Customer, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.Create"); err != nil {
		return nil, err
	}
	if err := r.v.denyInsert(); err != nil {
		return nil, err
	}
	if _, ok := s.profiles[c.ProfileID]; !ok {
		return nil, fmt.Errorf("insert customer: violates foreign key customers_profile_id_fkey")
	}
	for _, other := range s.customers {
		if other.ProfileID == c.ProfileID || other.CustomerCode == c.CustomerCode {
			return nil, domain.ErrDuplicate
		}
	}
	created := clone(c)
	created.ID = s.nextID("cus")
	now := s.tick()
	created.CreatedAt, created.UpdatedAt = now, now
	s.customers[created.ID] = created
	return clone(created), nil
}

func (r customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.GetByID"); err != nil {
		return nil, err
	}
	if c, ok := s.customers[id]; ok && r.v.canSeeCustomer(c) {
		return clone(c), nil
	}
	return nil, nil
}

func (r customerRepo) GetByProfileID(_ context.Context, profileID string) (*entity.Customer, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.GetByProfileID"); err != nil {
		return nil, err
	}
	for _, c := range s.customers {
		if c.ProfileID == profileID && r.v.canSeeCustomer(c) {
			return clone(c), nil
		}
	}
	return nil, nil
}

func (r customerRepo) List(_ context.Context, f repository.CustomerFilter) ([]*entity.Customer, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.List"); err != nil {
		return nil, err
	}
	var out []*entity.Customer
	for _, c := range s.customers {
		if !r.v.canSeeCustomer(c) {
			continue
		}
		if f.RegisteredBy != "" && (c.RegisteredBy == nil || *c.RegisteredBy != f.RegisteredBy) {
			continue
		}
		out = append(out, clone(c))
	}
	sortNewestFirst(out, func(c *entity.Customer) time.Time { return c.CreatedAt })
	return out, nil
}

func (r customerRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Customer, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.ListByIDs"); err != nil {
		return nil, err
	}
	var out []*entity.Customer
	for _, id := range unique(ids) {
		if c, ok := s.customers[id]; ok && r.v.canSeeCustomer(c) {
			out = append(out, clone(c))
		}
	}
	sortNewestFirst(out, func(c *entity.Customer) time.Time { return c.CreatedAt })
	return out, nil
}

func (r customerRepo) canWrite(c *entity.Customer) bool {
	if r.v.service() || r.v.isAdmin() {
		return true
	}
	wid := r.v.workerID()
	return wid != "" && c.RegisteredBy != nil && *c.RegisteredBy == wid
}

func (r customerRepo) Update(_ context.Context, id string, patch entity.CustomerPatch) (*entity.Customer, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.Update"); err != nil {
		return nil, err
	}
	c, ok := s.customers[id]
	if !ok || !r.v.canSeeCustomer(c) || !r.canWrite(c) {
		return nil, domain.ErrNotFound
	}
	if patch.DNI != nil {
		c.DNI = patch.DNI
	}
	if patch.Address != nil {
		c.Address = *patch.Address
	}
	if patch.City != nil {
		c.City = *patch.City
	}
	if patch.PostalCode != nil {
		c.PostalCode = patch.PostalCode
	}
	if patch.IsActive != nil {
		c.IsActive = *patch.IsActive
	}
	c.UpdatedAt = s.tick()
	return clone(c), nil
}

func (r customerRepo) SetRegisteredBy(_ context.Context, id, workerID string) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.SetRegisteredBy"); err != nil {
		return err
	}
	c, ok := s.customers[id]
	if !ok || !r.v.canSeeCustomer(c) || !r.canWrite(c) {
		return domain.ErrNotFound
	}
	if _, ok := s.workers[workerID]; !ok {
		return domain.ErrInvalidInput
	}
	c.RegisteredBy = &workerID
	c.UpdatedAt = s.tick()
	return nil
}

func (r customerRepo) Delete(_ context.Context, id string) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("customers.Delete"); err != nil {
		return err
	}
	c, ok := s.customers[id]
	if !ok || !r.v.canSeeCustomer(c) || !(r.v.service() || r.v.isAdmin()) {
		return domain.ErrNotFound
	}
	delete(s.customers, id)
	for sid, sub := range s.subscriptions {
		if sub.CustomerID == id {
			delete(s.subscriptions, sid)
		}
	}
	for _, t := range s.tickets {
		if t.CustomerID != nil && *t.CustomerID == id {
			t.CustomerID = nil
		}
	}
	return nil
}

// ---- plans ----

type planRepo struct{ v *view }

func (r planRepo) GetByID(_ context.Context, id string) (*entity.Plan, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("plans.GetByID"); err != nil {
		return nil, err
	}
	if p, ok := s.plans[id]; ok && r.v.canSeePlan(p) {
		return clone(p), nil
	}
	return nil, nil
}

func (r planRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Plan, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("plans.ListByIDs"); err != nil {
		return nil, err
	}
	var out []*entity.Plan
	for _, id := range unique(ids) {
		if p, ok := s.plans[id]; ok && r.v.canSeePlan(p) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r planRepo) ListActive(_ context.Context) ([]*entity.Plan, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("plans.ListActive"); err != nil {
		return nil, err
	}
	var out []*entity.Plan
	for _, p := range s.plans {
		if p.IsActive {
			out = append(out, clone(p))
		}
	}
	sortByPrice(out)
	return out, nil
}

// ---- subscriptions ----

type subscriptionRepo struct{ v *view }

func (r subscriptionRepo) Create(_ context.Context, sub *entity.Subscription) (*entity.Subscription, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("subscriptions.Create"); err != nil {
		return nil, err
	}
	if err := r.v.denyInsert(); err != nil {
		return nil, err
	}
	if _, ok := s.customers[sub.CustomerID]; !ok {
		return nil, domain.ErrInvalidInput
	}
	if _, ok := s.plans[sub.PlanID]; !ok {
		return nil, domain.ErrInvalidInput
	}
	created := clone(sub)
	created.ID = s.nextID("sub")
	created.CreatedAt = s.tick()
	s.subscriptions[created.ID] = created
	return clone(created), nil
}

func (r subscriptionRepo) ListByCustomerIDs(_ context.Context, customerIDs []string) ([]*entity.Subscription, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("subscriptions.ListByCustomerIDs"); err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, id := range customerIDs {
		want[id] = true
	}
	var out []*entity.Subscription
	for _, sub := range s.subscriptions {
		if want[sub.CustomerID] && r.v.canSeeSubscription(sub) {
			out = append(out, clone(sub))
		}
	}
	sortNewestFirst(out, func(sub *entity.Subscription) time.Time { return sub.CreatedAt })
	return out, nil
}

func (r subscriptionRepo) LatestByCustomer(_ context.Context, customerID string) (*entity.Subscription, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("subscriptions.LatestByCustomer"); err != nil {
		return nil, err
	}
	var latest *entity.Subscription
	for _, sub := range s.subscriptions {
		if sub.CustomerID != customerID || !r.v.canSeeSubscription(sub) {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	return cloneOrNil(latest), nil
}

// ---- tickets ----

type ticketRepo struct{ v *view }

func (r ticketRepo) ListByWorker(_ context.Context, workerID string) ([]*entity.Ticket, error) {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("tickets.ListByWorker"); err != nil {
		return nil, err
	}
	var out []*entity.Ticket
	for _, t := range s.tickets {
		if t.AssignedWorker != nil && *t.AssignedWorker == workerID && r.v.canSeeTicket(t) {
			out = append(out, clone(t))
		}
	}
	sortNewestFirst(out, func(t *entity.Ticket) time.Time { return t.CreatedAt })
	return out, nil
}

func (r ticketRepo) UpdateStatus(_ context.Context, id, status string) error {
	s := r.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.v.begin("tickets.UpdateStatus"); err != nil {
		return err
	}
	t, ok := s.tickets[id]
	if !ok || !r.v.canSeeTicket(t) {
		return domain.ErrNotFound
	}
	wid := r.v.workerID()
	assigned := wid != "" && t.AssignedWorker != nil && *t.AssignedWorker == wid
	if !r.v.service() && !r.v.isAdmin() && !assigned {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

// ---- generadores de código ----

type codeGen struct{ v *view }

func (g codeGen) EmployeeCode(_ context.Context) (string, error) {
	return g.next("codes.EmployeeCode", "EMP")
}

func (g codeGen) CustomerCode(_ context.Context) (string, error) {
	return g.next("codes.CustomerCode", "CUS")
}

func (g codeGen) next(op, prefix string) (string, error) {
	s := g.v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := g.v.begin(op); err != nil {
		return "", err
	}
	if s.CodesUnavailable {
		return "", nil
	}
	s.seq++
	return fmt.Sprintf("%s-%05d", prefix, s.seq), nil
}

func unique(ids []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sortByPrice(plans []*entity.Plan) {
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].Price.LessThan(plans[j].Price) })
}
