package modkit

import (
	"surveysync/internal/modkit/repokit"
	"surveysync/internal/platform/config"
	"surveysync/internal/platform/logger"
)

// Deps are the process wide pieces every module may use
// PG is nil when the store is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}
