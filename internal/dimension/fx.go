package dimension

import (
	"github.com/costlens/costlens/internal/dimension/repository"
	"github.com/costlens/costlens/internal/dimension/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dimension.resolver",
	fx.Provide(
		repository.Provide,
		service.NewResolver,
	),
)
