package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

var _ repository.CodeGenerator = (*CodeGenerator)(nil)

// CodeGenerator invoca las funciones SQL generate_employee_code / generate_customer_code.
type CodeGenerator struct {
	q Querier
}

// NewCodeGenerator construye el generador. Pasar pool o tx (Querier).
func NewCodeGenerator(q Querier) *CodeGenerator {
	return &CodeGenerator{q: q}
}

// EmployeeCode siguiente código EMP-00000.
func (g *CodeGenerator) EmployeeCode(ctx context.Context) (string, error) {
	return g.call(ctx, "generate_employee_code")
}

// CustomerCode siguiente código CUS-00000.
func (g *CodeGenerator) CustomerCode(ctx context.Context) (string, error) {
	return g.call(ctx, "generate_customer_code")
}

func (g *CodeGenerator) call(ctx context.Context, fn string) (string, error) {
	var code string
	if err := g.q.QueryRow(ctx, "SELECT "+fn+"()").Scan(&code); err != nil {
		return "", fmt.Errorf("%s: %w", fn, err)
	}
	return code, nil
}
