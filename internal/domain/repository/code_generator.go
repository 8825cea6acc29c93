package repository

import "context"

// CodeGenerator genera códigos correlativos únicos en la base de datos.
type CodeGenerator interface {
	EmployeeCode(ctx context.Context) (string, error)
	CustomerCode(ctx context.Context) (string, error)
}
