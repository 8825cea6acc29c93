package domain

import "time"

// Session sesión autenticada del actor. nil representa un llamador anónimo.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Tier nivel de credencial con el que se accede al almacén.
type Tier int

const (
	// TierUser acceso sujeto a las políticas de fila (RLS) del actor.
	TierUser Tier = iota
	// TierService acceso elevado que omite las políticas de fila.
	TierService
)

func (t Tier) String() string {
	if t == TierService {
		return "service"
	}
	return "user"
}

// AccessContext se resuelve una vez por operación y no se modifica después.
type AccessContext struct {
	Tier    Tier
	ActorID string // vacío para anónimo o procesos internos
	Role    string // rol leído del perfil; vacío si no se pudo resolver
}

// UserAccess acceso RLS en nombre de actorID ("" = anon).
func UserAccess(actorID string) AccessContext {
	return AccessContext{Tier: TierUser, ActorID: actorID}
}

// ServiceAccess acceso elevado para flujos internos (alta de cuentas, asignaciones).
func ServiceAccess() AccessContext {
	return AccessContext{Tier: TierService}
}

// IsAnonymous indica si no hay actor.
func (a AccessContext) IsAnonymous() bool { return a.ActorID == "" }

// ActorIDOf devuelve el id del actor o "" si la sesión es nil.
func ActorIDOf(s *Session) string {
	if s == nil {
		return ""
	}
	return s.UserID
}
