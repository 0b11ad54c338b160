package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/auxq/internal/shared"
	"github.com/urfave/cli/v3"
)

// QueueAdd appends a track URI to the active playback device's queue.
func (r *Runner) QueueAdd(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure Spotify credentials first", shared.ErrMissingCredentials)
	}

	uri := strings.TrimSpace(cmd.StringArg("uri"))
	if uri == "" {
		return fmt.Errorf("%w: track URI is required", shared.ErrMissingArgument)
	}

	if err := r.catalog.AddToQueue(ctx, uri); err != nil {
		return err
	}

	r.logger.Info("queued track", "uri", uri)
	return r.writePlain("✓ Queued %s\n", uri)
}

// QueueRemove reports that queue removal is not supported by the catalog.
func (r *Runner) QueueRemove(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure Spotify credentials first", shared.ErrMissingCredentials)
	}

	uri := strings.TrimSpace(cmd.StringArg("uri"))
	if uri == "" {
		return fmt.Errorf("%w: track URI is required", shared.ErrMissingArgument)
	}

	return r.catalog.RemoveFromQueue(ctx, uri)
}

// QueueDevices prints the playback device the pipeline would queue to.
func (r *Runner) QueueDevices(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure Spotify credentials first", shared.ErrMissingCredentials)
	}

	device, err := r.catalog.ActiveDevice(ctx)
	if err != nil {
		return err
	}
	if device == nil {
		return shared.ErrNoActiveDevice
	}

	state := "inactive"
	if device.Active {
		state = "active"
	}
	return r.writePlain("%s (%s) [%s] %s\n", device.Name, device.Type, state, device.ID)
}
