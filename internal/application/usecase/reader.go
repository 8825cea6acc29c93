package usecase

import (
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

// reader dependencias comunes de los casos de uso de lectura. Las lecturas nunca
// devuelven error: un fallo del almacén se registra y se responde vacío o nil.
type reader struct {
	store   repository.Store
	gate    *access.Gate
	metrics *metrics.ReadMetrics
	logger  zerolog.Logger
}

func (rd reader) degraded(query string, err error) {
	rd.metrics.IncDegraded(query)
	rd.logger.Error().Err(err).Str("query", query).Msg("lectura degradada a vacío")
}

// requireSession traduce los errores del gate al mensaje que ve el usuario.
func requireSession(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return domain.NewActionError(domain.ErrUnauthorized, "No autorizado", err)
	}
	return domain.NewActionError(domain.ErrForbidden, "", err)
}

// storeError envuelve un error del almacén salvo que ya sea un ActionError.
func storeError(err error) error {
	var ae *domain.ActionError
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewActionError(domain.ErrNotFound, "", err)
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.NewActionError(domain.ErrInvalidInput, "", err)
	}
	return domain.NewActionError(domain.ErrStore, "", err)
}

// keysOf claves no vacías de items, sin repetir y en orden de aparición.
func keysOf[T any](items []*T, key func(*T) string) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, key(it))
	}
	return unique(keys)
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func indexBy[T any](items []*T, key func(*T) string) map[string]*T {
	m := make(map[string]*T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}
	return m
}

// groupBy conserva el orden relativo de items dentro de cada grupo.
func groupBy[T any](items []*T, key func(*T) string) map[string][]*T {
	m := make(map[string][]*T)
	for _, it := range items {
		k := key(it)
		m[k] = append(m[k], it)
	}
	return m
}

func sortNewestFirst[T any](items []*T, createdAt func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return createdAt(items[i]).After(createdAt(items[j])) })
}
