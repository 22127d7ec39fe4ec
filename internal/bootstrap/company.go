package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldlane/fieldlane-auth/internal/config"
	"github.com/fieldlane/fieldlane-auth/internal/domain"
	"github.com/fieldlane/fieldlane-auth/internal/repository"
)

// EnsureCompany seeds a company for the configured join code if missing.
// Without at least one company, phone logins can never provision users.
func EnsureCompany(lc fx.Lifecycle, cfg config.Config, companies repository.CompanyRepository, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureCompany(ctx, cfg, companies, node, logger)
		},
	})
}

func ensureCompany(ctx context.Context, cfg config.Config, companies repository.CompanyRepository, node *snowflake.Node, logger *zap.Logger) error {
	code := strings.TrimSpace(cfg.SeedCompanyCode)
	if code == "" {
		return nil
	}

	if _, err := companies.GetByUniqueID(ctx, code); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("bootstrap company lookup: %w", err)
	}

	created, err := companies.Create(ctx, domain.Company{
		ID:       node.Generate().Int64(),
		UniqueID: code,
		Name:     code,
		Status:   domain.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("bootstrap create company: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap company created",
			zap.String("unique_id", created.UniqueID),
			zap.Int64("company_id", created.ID),
		)
	}
	return nil
}
