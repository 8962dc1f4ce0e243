package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/costlens/costlens/internal/clock"
	"github.com/costlens/costlens/internal/config"
	"github.com/costlens/costlens/internal/dimension"
	"github.com/costlens/costlens/internal/fact"
	factdomain "github.com/costlens/costlens/internal/fact/domain"
	"github.com/costlens/costlens/internal/ingest"
	ingestdomain "github.com/costlens/costlens/internal/ingest/domain"
	"github.com/costlens/costlens/internal/migration"
	"github.com/costlens/costlens/internal/observability"
	"github.com/costlens/costlens/internal/uniteconomics"
	uedomain "github.com/costlens/costlens/internal/uniteconomics/domain"
	"github.com/costlens/costlens/internal/uploadscope"
	scopedomain "github.com/costlens/costlens/internal/uploadscope/domain"
	"github.com/costlens/costlens/pkg/db"
	"github.com/costlens/costlens/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		dimension.Module,
		fact.Module,
		ingest.Module,
		uploadscope.Module,
		uniteconomics.Module,

		// Routing and transport layers consume these services; make sure the
		// whole graph constructs even when no route is registered yet.
		fx.Invoke(func(ingestdomain.Service, factdomain.UploadStore, scopedomain.Guard, uedomain.Service) {}),
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
