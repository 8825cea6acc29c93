// Package ticket traduce el vocabulario interno de las órdenes de servicio
// (status/priority en la base de datos) al vocabulario que ve el usuario.
//
// Ambas traducciones son totales y biyectivas entre los cuatro valores de cada lado.
// "closed" se muestra como "cancelado": no existe un estado separado para
// órdenes canceladas, así que una orden cerrada sin resolver se presenta como cancelada.
package ticket

import (
	"fmt"

	"github.com/jhoicas/conecta-api/internal/domain"
)

// Status estado interno.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Estado estado externo (presentación).
type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoEnProgreso Estado = "en_progreso"
	EstadoCompletado Estado = "completado"
	EstadoCancelado  Estado = "cancelado"
)

// Priority prioridad interna.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Prioridad prioridad externa.
type Prioridad string

const (
	PrioridadBaja    Prioridad = "baja"
	PrioridadMedia   Prioridad = "media"
	PrioridadAlta    Prioridad = "alta"
	PrioridadUrgente Prioridad = "urgente"
)

var (
	estadoByStatus = map[Status]Estado{
		StatusOpen:       EstadoPendiente,
		StatusInProgress: EstadoEnProgreso,
		StatusResolved:   EstadoCompletado,
		StatusClosed:     EstadoCancelado,
	}
	statusByEstado = invert(estadoByStatus)

	prioridadByPriority = map[Priority]Prioridad{
		PriorityLow:    PrioridadBaja,
		PriorityMedium: PrioridadMedia,
		PriorityHigh:   PrioridadAlta,
		PriorityUrgent: PrioridadUrgente,
	}
	priorityByPrioridad = invert(prioridadByPriority)
)

func invert[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Statuses devuelve los estados internos en orden de flujo.
func Statuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
}

// Priorities devuelve las prioridades internas de menor a mayor.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// ExternalStatus traduce un estado interno. Un valor desconocido (dato corrupto)
// se presenta como cancelado, igual que un ticket cerrado.
func ExternalStatus(s Status) Estado {
	if e, ok := estadoByStatus[s]; ok {
		return e
	}
	return EstadoCancelado
}

// InternalStatus traduce un estado externo. Devuelve ErrInvalidInput si e no es uno de los cuatro valores.
func InternalStatus(e Estado) (Status, error) {
	s, ok := statusByEstado[e]
	if !ok {
		return "", fmt.Errorf("estado %q: %w", e, domain.ErrInvalidInput)
	}
	return s, nil
}

// ExternalPriority traduce una prioridad interna. Un valor desconocido se presenta como urgente.
func ExternalPriority(p Priority) Prioridad {
	if e, ok := prioridadByPriority[p]; ok {
		return e
	}
	return PrioridadUrgente
}

// InternalPriority traduce una prioridad externa.
func InternalPriority(p Prioridad) (Priority, error) {
	v, ok := priorityByPrioridad[p]
	if !ok {
		return "", fmt.Errorf("prioridad %q: %w", p, domain.ErrInvalidInput)
	}
	return v, nil
}
