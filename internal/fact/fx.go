package fact

import (
	"github.com/costlens/costlens/internal/fact/repository"
	"github.com/costlens/costlens/internal/fact/writer"
	"go.uber.org/fx"
)

var Module = fx.Module("fact.writer",
	fx.Provide(
		repository.Provide,
		repository.ProvideUploads,
		writer.New,
	),
)
