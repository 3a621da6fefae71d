// Package bridge implements the schedule gateway: CRUD against the
// bridge's persistent schedule store, translating between the unified
// time-control model and the bridge's wire formats.
package bridge

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pepperonas/mrx3k1-sub002/internal/hue"
	"github.com/pepperonas/mrx3k1-sub002/internal/timectl"
)

// createdFormat is the timestamp layout the bridge uses for the created
// and lastmodified fields.
const createdFormat = "2006-01-02T15:04:05"

// Gateway performs schedule operations against the bridge. It owns no
// state between calls; every List is authoritative as of the moment it
// returns.
type Gateway struct {
	client *hue.Client
}

// NewGateway creates a gateway over the given bridge client.
func NewGateway(client *hue.Client) *Gateway {
	return &Gateway{client: client}
}

// List fetches all bridge schedules and decodes them into time controls.
// Schedules whose localtime string belongs to a class outside this model
// (one-shot timers, absolute times) are silently dropped; the bridge may
// hold schedules created by other tools.
func (g *Gateway) List(ctx context.Context) ([]timectl.TimeControl, error) {
	schedules, err := g.client.GetSchedules(ctx)
	if err != nil {
		return nil, err
	}

	controls := make([]timectl.TimeControl, 0, len(schedules))
	for id, sched := range schedules {
		desc, ok := timectl.ParseLocaltime(sched.Localtime)
		if !ok {
			log.Debug().
				Str("id", id).
				Str("localtime", sched.Localtime).
				Msg("Skipping out-of-model bridge schedule")
			continue
		}

		tc := timectl.TimeControl{
			ID:       id,
			Kind:     desc.Kind,
			Name:     sched.Name,
			Enabled:  sched.Status == hue.StatusEnabled,
			Schedule: &desc,
		}

		// An unrecognized command is reported with empty actions, not
		// treated as an error.
		if action, ok := timectl.DecodeCommand(sched.Command); ok {
			tc.Actions = []timectl.Action{action}
		}

		if t, err := time.Parse(createdFormat, sched.Created); err == nil {
			tc.Created = t
		}
		if t, err := time.Parse(createdFormat, sched.LastModified); err == nil {
			tc.LastModified = t
		}

		controls = append(controls, tc)
	}

	sort.Slice(controls, func(i, j int) bool { return controls[i].ID < controls[j].ID })
	return controls, nil
}

// Create stores a new schedule on the bridge and returns the id the
// bridge assigned.
func (g *Gateway) Create(ctx context.Context, tc timectl.TimeControl) (string, error) {
	sched, err := g.encode(tc)
	if err != nil {
		return "", err
	}

	id, err := g.client.CreateSchedule(ctx, sched)
	if err != nil {
		return "", err
	}

	log.Info().Str("id", id).Str("name", tc.Name).Str("localtime", sched.Localtime).Msg("Bridge schedule created")
	return id, nil
}

// Update replaces the schedule with the given id.
func (g *Gateway) Update(ctx context.Context, id string, tc timectl.TimeControl) error {
	sched, err := g.encode(tc)
	if err != nil {
		return err
	}

	if err := g.client.UpdateSchedule(ctx, id, sched); err != nil {
		return err
	}

	log.Info().Str("id", id).Str("name", tc.Name).Msg("Bridge schedule updated")
	return nil
}

// Delete removes the schedule with the given id.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	if err := g.client.DeleteSchedule(ctx, id); err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("Bridge schedule deleted")
	return nil
}

// SetEnabled toggles a schedule's status without replacing the record.
func (g *Gateway) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if err := g.client.SetScheduleStatus(ctx, id, enabled); err != nil {
		return err
	}

	log.Info().Str("id", id).Bool("enabled", enabled).Msg("Bridge schedule status changed")
	return nil
}

// encode validates a record and builds the bridge schedule payload. The
// bridge format carries exactly one command, so only the first action is
// encoded.
func (g *Gateway) encode(tc timectl.TimeControl) (hue.Schedule, error) {
	if tc.Backend() != timectl.BackendBridge {
		return hue.Schedule{}, &timectl.ValidationError{Field: "kind", Reason: string(tc.Kind) + " is not bridge-managed"}
	}
	if err := tc.Validate(); err != nil {
		return hue.Schedule{}, err
	}

	localtime, err := tc.Schedule.Localtime()
	if err != nil {
		return hue.Schedule{}, err
	}

	command, err := timectl.EncodeCommand(tc.Actions[0], g.client.Username())
	if err != nil {
		return hue.Schedule{}, err
	}

	status := hue.StatusDisabled
	if tc.Enabled {
		status = hue.StatusEnabled
	}

	return hue.Schedule{
		Name:      tc.Name,
		Command:   command,
		Localtime: localtime,
		Status:    status,
		Recycle:   false,
	}, nil
}
