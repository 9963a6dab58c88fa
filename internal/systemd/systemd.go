// Package systemd implements domain.ServiceController with systemctl.
package systemd

import (
	"context"
	"strings"

	"nusacloud/localstacker/internal/runner"
)

// Controller is the production ServiceController.
type Controller struct {
	runner runner.Runner
	binary string
}

// New returns a Controller. An empty binary defaults to "systemctl".
func New(r runner.Runner, binary string) *Controller {
	if binary == "" {
		binary = "systemctl"
	}
	return &Controller{runner: r, binary: binary}
}

// Exists reports whether a unit file matching name is installed.
// systemctl exits non-zero when nothing matches, which is reported as
// absent rather than as an error.
func (c *Controller) Exists(ctx context.Context, name string) (bool, error) {
	res, err := c.runner.Query(ctx, runner.Command{
		Name:        c.binary,
		Args:        []string{"list-unit-files", name},
		Description: "check service exists",
	})
	if err != nil {
		if res == nil {
			return false, err
		}
		return false, nil
	}
	return strings.Contains(res.Stdout, name), nil
}

// IsRunning reports whether the unit is active. "inactive" and "failed"
// states exit non-zero but still answer the question.
func (c *Controller) IsRunning(ctx context.Context, name string) (bool, error) {
	res, err := c.runner.Query(ctx, runner.Command{
		Name:        c.binary,
		Args:        []string{"is-active", name},
		Description: "check service status",
	})
	if res == nil {
		return false, err
	}
	state := strings.TrimSpace(res.Stdout)
	if err != nil && state == "" {
		return false, err
	}
	return state == "active", nil
}

func (c *Controller) Restart(ctx context.Context, name string) error {
	_, err := c.runner.Run(ctx, runner.Command{
		Name:        c.binary,
		Args:        []string{"restart", name},
		Description: "restart service",
	})
	return err
}
