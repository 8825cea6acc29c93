package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/application/access"
	appanalytics "github.com/jhoicas/conecta-api/internal/application/analytics"
	"github.com/jhoicas/conecta-api/internal/application/auth"
	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/provisioning"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	apphttp "github.com/jhoicas/conecta-api/internal/interfaces/http"
	"github.com/jhoicas/conecta-api/internal/testutil"
	pkgjwt "github.com/jhoicas/conecta-api/pkg/jwt"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "conecta-test"
	testExpMin    = 60
)

// testEnv app completa sobre el almacén en memoria.
type testEnv struct {
	app      *fiber.App
	store    *testutil.Store
	idp      *testutil.IdentityProvider
	denylist *testutil.Denylist
	authUC   *auth.AuthUseCase
	gate     *access.Gate

	admin, tech, client *entity.Profile
	worker              *entity.Worker
	customer            *entity.Customer
	ticket              *entity.Ticket
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{store: testutil.NewStore(), idp: testutil.NewIdentityProvider(), denylist: &testutil.Denylist{}}

	e.admin = e.store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	e.tech = e.store.AddProfile(entity.RoleWorker, "tec@conecta.pe", "Rosa Quispe")
	e.worker = e.store.AddWorker(e.tech.ID, "Instalador")
	e.client = e.store.AddProfile(entity.RoleCustomer, "cli@conecta.pe", "Luis Torres")
	e.customer = e.store.AddCustomer(e.client.ID, e.worker.ID)
	plan := e.store.AddPlan("Fibra 100", "79.90", true)
	e.store.AddSubscription(e.customer.ID, plan.ID)
	e.ticket = e.store.AddTicket("Instalación", e.worker.ID, e.customer.ID, "open", "high")
	e.idp.Seed(e.tech.ID, "tec@conecta.pe", "secreto1")

	logger := zerolog.Nop()
	reg := prometheus.NewRegistry()
	readMetrics := metrics.NewReadMetrics(reg)
	e.gate = access.NewGate(e.store, logger)
	e.authUC = auth.NewAuthUseCase(e.idp, e.store, e.denylist, auth.JWTConfig{Secret: testJWTSecret}, logger)
	customers := usecase.NewCustomerUseCase(e.store, e.gate, readMetrics, logger)
	workers := usecase.NewWorkerUseCase(e.store, e.gate, readMetrics, logger)
	tickets := usecase.NewTicketUseCase(e.store, e.gate, readMetrics, logger)

	e.app = fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(e.app, apphttp.RouterDeps{
		AuthUC:       e.authUC,
		Provisioning: provisioning.NewService(e.store, e.idp, e.gate, metrics.NewProvisioningMetrics(reg), logger),
		CustomerUC:   customers,
		WorkerUC:     workers,
		PlanUC:       usecase.NewPlanUseCase(e.store, nil, readMetrics, logger),
		TicketUC:     tickets,
		Dashboard:    appanalytics.NewDashboardUseCase(e.gate, customers, workers, tickets),
		Gate:         e.gate,
		Gatherer:     reg,
	})
	return e
}

// tokenFor genera un JWT para el perfil indicado.
func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, _, err := pkgjwt.Generate(testJWTSecret, userID, userID+"@conecta.pe", testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// do lanza una petición y devuelve la respuesta.
func (e *testEnv) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// buildRoleApp app mínima con AuthMiddleware + RequireRole y un handler que devuelve el rol.
func buildRoleApp(e *testEnv, allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(e.authUC),
		apphttp.RequireRole(e.gate, allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c), "user_id": apphttp.GetUserID(c)})
		},
	)
	return app
}

func get(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware / RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	e := newTestEnv(t)
	app := buildRoleApp(e, entity.RoleAdmin)

	resp := get(t, app, tokenFor(t, e.admin.ID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, entity.RoleAdmin, body["role"])
	assert.Equal(t, e.admin.ID, body["user_id"])
}

func TestRequireRole_TecnicoAccedeRutaAdminOTecnico(t *testing.T) {
	e := newTestEnv(t)
	app := buildRoleApp(e, entity.RoleAdmin, entity.RoleWorker)

	resp := get(t, app, tokenFor(t, e.tech.ID))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole_ClienteBloqueadoEnRutaAdmin(t *testing.T) {
	e := newTestEnv(t)
	app := buildRoleApp(e, entity.RoleAdmin)

	resp := get(t, app, tokenFor(t, e.client.ID))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, resp).Code)
}

// El rol sale del perfil: un token válido sin perfil no tiene rol.
func TestRequireRole_SinPerfil_Retorna401(t *testing.T) {
	e := newTestEnv(t)
	app := buildRoleApp(e, entity.RoleAdmin)

	resp := get(t, app, tokenFor(t, "prof-sin-perfil"))
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	e := newTestEnv(t)
	resp := get(t, buildRoleApp(e, entity.RoleAdmin), "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	e := newTestEnv(t)
	app := buildRoleApp(e, entity.RoleAdmin)

	foreign, _, err := pkgjwt.Generate("otro-secreto", e.admin.ID, "admin@conecta.pe", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := map[string]string{
		"sin Bearer":   "Token abc",
		"firma ajena":  "Bearer eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.firma",
		"otro secreto": "Bearer " + foreign,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp := get(t, app, header)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "INVALID_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAuthMiddleware_TokenRevocado_Retorna401(t *testing.T) {
	e := newTestEnv(t)
	header := tokenFor(t, e.tech.ID)

	resp := e.do(t, http.MethodPost, "/api/auth/logout", header, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.ActionResult](t, resp).Success)

	resp = e.do(t, http.MethodGet, "/api/auth/me", header, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalAuth_AnonimoLeePlanes(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/api/plans", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	plans := decode[[]dto.PlanResponse](t, resp)
	require.Len(t, plans, 1)
	assert.Equal(t, "Fibra 100", plans[0].Name)

	resp = e.do(t, http.MethodGet, "/api/plans", "Bearer basura", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetSession_SinMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, apphttp.GetSession(c))
		assert.Empty(t, apphttp.GetUserID(c))
		assert.Empty(t, apphttp.GetRole(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
