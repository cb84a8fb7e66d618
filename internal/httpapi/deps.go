package httpapi

import (
	"context"
	"sync/atomic"

	"sourcing-advisor/internal/config"
	"sourcing-advisor/internal/events"
	"sourcing-advisor/internal/rules"
)

type Deps struct {
	Rules *rules.Cache

	Hub *events.Hub

	// Atomic stores
	CfgVal     *atomic.Value // stores config.Config
	ScanStatus *atomic.Value // stores ScanSnapshot

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Remote rule-store sync entrypoint (inject for testability)
	SyncRules func(ctx context.Context) error
}
