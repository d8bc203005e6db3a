package services

import (
	"log/slog"

	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
	portsrepo "github.com/quotis/quotation_batch_app/internal/core/ports/repositories"
	portssvc "github.com/quotis/quotation_batch_app/internal/core/ports/services"
	"github.com/quotis/quotation_batch_app/internal/platform/config"
)

// NewServiceContainer creates a service container with properly initialized
// dependencies.
func NewServiceContainer(cfg *config.Config, store portsrepo.BatchStore, crm clients.CRMClient, renderer clients.DocumentRenderer, logger *slog.Logger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Batch = NewBatchService(store, crm, cfg.BatchTTL, logger)
	container.Processor = NewBatchProcessor(store, crm, renderer, cfg.ProcessConcurrency, cfg.BatchTTL, logger)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.BatchSvcFacade    = (*BatchService)(nil)
	_ portssvc.BatchProcessorSvc = (*BatchProcessor)(nil)
)
