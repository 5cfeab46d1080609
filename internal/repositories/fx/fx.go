package fx

import (
	"github.com/synthetix-ai/drafter/internal/repositories/batch"
	"go.uber.org/fx"
)

var Module = fx.Options(
	batch.Module,
)
