package uniteconomics

import (
	"github.com/costlens/costlens/internal/uniteconomics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("uniteconomics.service",
	fx.Provide(service.NewService),
)
