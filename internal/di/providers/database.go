package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/trigger"
)

// BusHandle wraps the event bus with its context for lifecycle management.
type BusHandle struct {
	*events.Bus
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *BusHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Bus.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideBus provides the change-event bus, started in the background.
func ProvideBus(i do.Injector) (*BusHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	bus := events.NewBus(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go bus.Start(ctx)

	return &BusHandle{Bus: bus, cancel: cancel}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	busHandle := do.MustInvoke[*BusHandle](i)

	dbPath := cfg.Data.DatabasePath()
	db, err := store.New(dbPath, log.Logger, busHandle.Bus)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideTriggers registers the counter, notification, cascade and
// propagation triggers on the bus.
func ProvideTriggers(i do.Injector) (*trigger.Triggers, error) {
	busHandle := do.MustInvoke[*BusHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return trigger.Register(busHandle.Bus, storeHandle.Store, log.Logger), nil
}
