package uploadscope

import (
	"github.com/costlens/costlens/internal/uploadscope/repository"
	"github.com/costlens/costlens/internal/uploadscope/service"
	"go.uber.org/fx"
)

var Module = fx.Module("uploadscope.guard",
	fx.Provide(
		repository.Provide,
		service.NewGuard,
	),
)
