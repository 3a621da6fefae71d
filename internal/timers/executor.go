package timers

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/pepperonas/mrx3k1-sub002/internal/hue"
)

// Executor applies a state payload to a set of lights. The engine only
// depends on this interface; the concrete network client is injected so
// tests can observe executions deterministically.
type Executor interface {
	Apply(ctx context.Context, lightIDs []string, state map[string]any) error
}

// BridgeExecutor applies states directly through the bridge client. It is
// the engine's fallback when no callback is registered. Calls are rate
// limited so a sweep firing many timers at once doesn't flood the bridge.
type BridgeExecutor struct {
	client  *hue.Client
	limiter *rate.Limiter
}

// NewBridgeExecutor creates a rate-limited direct executor.
func NewBridgeExecutor(client *hue.Client, rps float64) *BridgeExecutor {
	if rps <= 0 {
		rps = 10.0
	}
	return &BridgeExecutor{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Apply sets the state on every light. A failure on one light does not
// stop the remaining lights from being attempted.
func (x *BridgeExecutor) Apply(ctx context.Context, lightIDs []string, state map[string]any) error {
	var errs []error
	for _, id := range lightIDs {
		if err := x.limiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		if err := x.client.SetLightState(ctx, id, state); err != nil {
			log.Error().Err(err).Str("light", id).Msg("Failed to apply timer state")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
