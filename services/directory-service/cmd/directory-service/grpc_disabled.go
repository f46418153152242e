//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/bookora/bookora/libs/db"
	"github.com/bookora/bookora/services/directory-service/internal/storage"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *db.Pool, _ *storage.Repository) error {
	return nil
}
