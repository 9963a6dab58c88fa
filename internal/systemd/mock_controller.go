package systemd

import "context"

// FakeController is an in-memory domain.ServiceController for testing.
// Units maps installed unit names to whether they are running.
type FakeController struct {
	Units      map[string]bool
	LookupErr  error
	RestartErr error
	Restarted  []string
}

// NewFakeController returns a FakeController with no units.
func NewFakeController() *FakeController {
	return &FakeController{Units: make(map[string]bool)}
}

func (f *FakeController) Exists(ctx context.Context, name string) (bool, error) {
	if f.LookupErr != nil {
		return false, f.LookupErr
	}
	_, ok := f.Units[name]
	return ok, nil
}

func (f *FakeController) IsRunning(ctx context.Context, name string) (bool, error) {
	if f.LookupErr != nil {
		return false, f.LookupErr
	}
	return f.Units[name], nil
}

func (f *FakeController) Restart(ctx context.Context, name string) error {
	if f.RestartErr != nil {
		return f.RestartErr
	}
	f.Restarted = append(f.Restarted, name)
	return nil
}
