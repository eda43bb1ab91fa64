package app

import (
	"github.com/auditnet/validator-backend/internal/http/handlers"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Validation *handlers.ValidationHandler
	Analytics  *handlers.AnalyticsHandler
	Reports    *handlers.ReportHandler
}

func wireHandlers(serviceset Services) Handlers {
	return Handlers{
		Health:     handlers.NewHealthHandler(),
		Validation: handlers.NewValidationHandler(serviceset.Validation),
		Analytics:  handlers.NewAnalyticsHandler(serviceset.Analytics),
		Reports:    handlers.NewReportHandler(serviceset.Reports),
	}
}
