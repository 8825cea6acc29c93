package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Alta de cuentas (técnicos y clientes).
	ErrIdentityCreation = errors.New("error al crear la identidad")
	ErrProfileCreation  = errors.New("error al crear el perfil")
	ErrWorkerCreation   = errors.New("error al crear el técnico")
	ErrCustomerCreation = errors.New("error al crear el cliente")

	// ErrStore errores del almacén de datos que se devuelven tal cual al llamador.
	ErrStore = errors.New("error del almacén de datos")
)

// ActionError error de una acción de escritura. Kind es uno de los sentinelas de
// arriba (errors.Is compara contra él) y Message el texto que ve el usuario.
type ActionError struct {
	Kind    error
	Message string
	Err     error
}

// NewActionError construye un ActionError. Si message está vacío se usa el texto de kind.
func NewActionError(kind error, message string, cause error) *ActionError {
	if message == "" && kind != nil {
		message = kind.Error()
	}
	return &ActionError{Kind: kind, Message: message, Err: cause}
}

func (e *ActionError) Error() string { return e.Message }

// Is permite errors.Is(err, domain.ErrProfileCreation).
func (e *ActionError) Is(target error) bool { return e.Kind != nil && target == e.Kind }

func (e *ActionError) Unwrap() error { return e.Err }

// MessageOf devuelve el mensaje visible de err (ActionError.Message o err.Error()).
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
