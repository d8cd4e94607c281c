package warming

import (
	"context"

	"github.com/mileusna/crontab"
	"nestiq.ai/listing-gateway/app/utils/logger"
	"nestiq.ai/listing-gateway/config/environment_variables"
)

// Warmer is the slice of the engine the scheduler drives.
type Warmer interface {
	WarmAll(ctx context.Context) WarmSummary
}

type CronService struct {
	Warmer Warmer
}

func NewCronService(warmer Warmer) *CronService {
	return &CronService{
		Warmer: warmer,
	}
}

// Start warms once immediately so a fresh instance never serves a fully cold
// cache, then registers the recurring job under WARMING_SCHEDULE.
func (cs *CronService) Start(ctx context.Context, ctab *crontab.Crontab) error {
	if !environment_variables.EnvironmentVariables.WARMING_ENABLED {
		logger.GetLogger().Info("Warming disabled, scheduler not started")
		return nil
	}

	cs.warm(ctx)

	return ctab.AddJob(environment_variables.EnvironmentVariables.WARMING_SCHEDULE, func() {
		cs.warm(ctx)
	})
}

func (cs *CronService) warm(ctx context.Context) {
	if cs == nil || cs.Warmer == nil {
		return
	}
	summary := cs.Warmer.WarmAll(ctx)
	if summary.Skipped {
		return
	}
	if summary.Failures > 0 {
		logger.GetLogger().Warnf("Scheduled warm run finished with %d item failures", summary.Failures)
	}
}
