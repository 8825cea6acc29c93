package dto

import (
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/ticket"
	"github.com/jhoicas/conecta-api/pkg/money"
)

const dateLayout = "2006-01-02"

// FromProfile perfil completo.
func FromProfile(p *entity.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		Phone:     p.Phone,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
	}
}

// SummaryOf perfil resumido; nil si p es nil.
func SummaryOf(p *entity.Profile) *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{ID: p.ID, Email: p.Email, FullName: p.FullName, Phone: p.Phone}
}

// FromWorker técnico sin relaciones.
func FromWorker(w *entity.Worker) WorkerResponse {
	return WorkerResponse{
		ID:           w.ID,
		ProfileID:    w.ProfileID,
		EmployeeCode: w.EmployeeCode,
		Department:   w.Department,
		Position:     w.Position,
		HireDate:     w.HireDate.Format(dateLayout),
		IsActive:     w.IsActive,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// FromCustomer cliente sin relaciones.
func FromCustomer(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           c.ID,
		ProfileID:    c.ProfileID,
		CustomerCode: c.CustomerCode,
		DNI:          c.DNI,
		Address:      c.Address,
		City:         c.City,
		PostalCode:   c.PostalCode,
		RegisteredBy: c.RegisteredBy,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// FromPlan plan con etiqueta de precio en soles.
func FromPlan(p *entity.Plan) *PlanResponse {
	if p == nil {
		return nil
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return &PlanResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		PriceLabel: money.FormatPEN(p.Price),
		Features:   features,
		Speed:      p.Speed,
		IsActive:   p.IsActive,
	}
}

// PlanSummaryOf plan resumido; nil si p es nil.
func PlanSummaryOf(p *entity.Plan) *PlanSummary {
	if p == nil {
		return nil
	}
	return &PlanSummary{ID: p.ID, Name: p.Name, Price: p.Price}
}

// FromSubscription suscripción sin plan.
func FromSubscription(s *entity.Subscription) SubscriptionResponse {
	return SubscriptionResponse{ID: s.ID, CustomerID: s.CustomerID, PlanID: s.PlanID, Status: s.Status}
}

// FromTicket orden de servicio con estado y prioridad en el vocabulario externo.
func FromTicket(t *entity.Ticket) ServiceResponse {
	return ServiceResponse{
		ID:              t.ID,
		Tipo:            t.Title,
		Descripcion:     t.Description,
		Estado:          string(ticket.ExternalStatus(ticket.Status(t.Status))),
		Prioridad:       string(ticket.ExternalPriority(ticket.Priority(t.Priority))),
		FechaProgramada: t.CreatedAt,
		CustomerID:      t.CustomerID,
	}
}
