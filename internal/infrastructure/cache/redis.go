// Package cache adaptadores Redis: catálogo de planes activos y tokens revocados.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

const (
	activePlansKey  = "conecta:plans:active"
	revokedTokenKey = "conecta:revoked:"
)

var (
	_ ports.PlanCache     = (*PlanCache)(nil)
	_ ports.TokenDenylist = (*TokenDenylist)(nil)
)

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// PlanCache catálogo de planes activos serializado en JSON.
type PlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPlanCache construye la caché de planes.
func NewPlanCache(client *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{client: client, ttl: ttl}
}

// GetActivePlans lee el catálogo; (nil, false, nil) si no hay entrada.
func (c *PlanCache) GetActivePlans(ctx context.Context) ([]*entity.Plan, bool, error) {
	raw, err := c.client.Get(ctx, activePlansKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get active plans: %w", err)
	}
	var plans []*entity.Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return nil, false, fmt.Errorf("decode active plans: %w", err)
	}
	return plans, true, nil
}

// SetActivePlans guarda el catálogo con el TTL configurado.
func (c *PlanCache) SetActivePlans(ctx context.Context, plans []*entity.Plan) error {
	if plans == nil {
		plans = []*entity.Plan{}
	}
	raw, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("encode active plans: %w", err)
	}
	return c.client.Set(ctx, activePlansKey, raw, c.ttl).Err()
}

// TokenDenylist tokens revocados, guardados por hash hasta su expiración.
type TokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist construye la lista de revocados.
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Revoke marca el token como revocado durante ttl. Un ttl <= 0 no guarda nada (ya venció).
func (d *TokenDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, revokedTokenKey+tokenHash(token), 1, ttl).Err()
}

// IsRevoked indica si el token fue revocado.
func (d *TokenDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedTokenKey+tokenHash(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
