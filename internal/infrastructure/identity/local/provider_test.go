package local

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/pkg/jwt"
)

type identityRow struct {
	id, email, hash string
	confirmedAt     *time.Time
}

// fakeQuerier tabla identities en memoria; reconoce las tres sentencias del proveedor.
type fakeQuerier struct {
	rows map[string]identityRow // por email
}

func newFakeQuerier() *fakeQuerier { return &fakeQuerier{rows: map[string]identityRow{}} }

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO identities"):
		email := args[1].(string)
		if _, ok := f.rows[email]; ok {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
		}
		f.rows[email] = identityRow{id: args[0].(string), email: email, hash: args[2].(string), confirmedAt: args[3].(*time.Time)}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE FROM identities"):
		for email, r := range f.rows {
			if r.id == args[0].(string) {
				delete(f.rows, email)
				return pgconn.NewCommandTag("DELETE 1"), nil
			}
		}
		return pgconn.NewCommandTag("DELETE 0"), nil
	}
	return pgconn.CommandTag{}, errors.New("sentencia no soportada")
}

type fakeRow struct {
	r   identityRow
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.r.id
	*dest[1].(*string) = r.r.hash
	*dest[2].(**time.Time) = r.r.confirmedAt
	return nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	r, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{r: r}
}

func newProvider(q *fakeQuerier) *Provider {
	return NewProvider(q, TokenConfig{Secret: "s3cr3t", ExpMinutes: 30, Issuer: "conecta-api"}).WithCost(bcrypt.MinCost)
}

func TestCreateIdentity_YSignIn(t *testing.T) {
	q := newFakeQuerier()
	p := newProvider(q)
	ctx := context.Background()

	u, err := p.CreateIdentity(ctx, " Tec@Conecta.pe ", "secreto1", true)
	require.NoError(t, err)
	assert.Equal(t, "tec@conecta.pe", u.Email)

	s, err := p.SignIn(ctx, "tec@conecta.pe", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.User.ID)

	claims, err := jwt.Parse("s3cr3t", s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "tec@conecta.pe", claims.Email)
}

func TestCreateIdentity_Duplicado(t *testing.T) {
	p := newProvider(newFakeQuerier())
	ctx := context.Background()

	_, err := p.CreateIdentity(ctx, "tec@conecta.pe", "secreto1", true)
	require.NoError(t, err)
	_, err = p.CreateIdentity(ctx, "tec@conecta.pe", "otro123", true)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, "A user with this email address has already been registered", err.Error())
}

func TestCreateIdentity_Validaciones(t *testing.T) {
	p := newProvider(newFakeQuerier())
	_, err := p.CreateIdentity(context.Background(), "sin-arroba", "secreto1", true)
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = p.CreateIdentity(context.Background(), "a@b.pe", "123", true)
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignIn_Rechazos(t *testing.T) {
	q := newFakeQuerier()
	p := newProvider(q)
	ctx := context.Background()
	_, err := p.CreateIdentity(ctx, "pend@conecta.pe", "secreto1", false)
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "nadie@conecta.pe", "secreto1")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "pend@conecta.pe", "incorrecta")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "pend@conecta.pe", "secreto1")
	assert.ErrorIs(t, err, ErrEmailNotConfirm)
}

func TestDeleteIdentity(t *testing.T) {
	q := newFakeQuerier()
	p := newProvider(q)
	ctx := context.Background()
	u, err := p.CreateIdentity(ctx, "tec@conecta.pe", "secreto1", true)
	require.NoError(t, err)

	require.NoError(t, p.DeleteIdentity(ctx, u.ID))
	assert.Empty(t, q.rows)
	assert.NoError(t, p.DeleteIdentity(ctx, u.ID))
}
