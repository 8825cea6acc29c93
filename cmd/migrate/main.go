package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/conecta-api/internal/infrastructure/postgres"
	"github.com/jhoicas/conecta-api/pkg/config"
	"github.com/jhoicas/conecta-api/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "comando de migración: up|down|status|version|redo|reset|up-to|down-to")
	target := flag.String("version", "", "versión destino para up-to y down-to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "migrate",
	})

	var args []string
	switch *cmd {
	case "up", "down", "status", "version", "redo", "reset":
	case "up-to", "down-to":
		if *target == "" {
			log.Fatal().Str("cmd", *cmd).Msg("falta -version")
		}
		args = append(args, *target)
	default:
		log.Fatal().Str("cmd", *cmd).Msg("valor de -cmd desconocido")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, *cmd, args...); err != nil {
		log.Error().Err(err).Str("cmd", *cmd).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", *cmd).Msg("migración completada")
}
