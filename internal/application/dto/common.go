package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionResult respuesta de las acciones de escritura: el cliente decide por Success,
// nunca por el código HTTP. Error lleva el mensaje para mostrar al usuario.
type ActionResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK construye un ActionResult exitoso.
func OK(data any) ActionResult {
	return ActionResult{Success: true, Data: data}
}

// Fail construye un ActionResult fallido.
func Fail(message string) ActionResult {
	return ActionResult{Success: false, Error: message}
}
