package runner

import (
	"context"
	"fmt"

	"nusacloud/localstacker/internal/domain"
)

// FakeResponse is the canned outcome of a FakeRunner invocation.
type FakeResponse struct {
	Stdout   string
	ExitCode int

	// Err, when set, is returned as-is. A non-zero ExitCode without Err
	// produces an ErrExternalTool failure.
	Err error
}

// FakeRunner is an in-memory Runner for testing. Responses are keyed by
// Command.Line(); commands without a response succeed with empty output.
type FakeRunner struct {
	Responses map[string]FakeResponse

	// Executables lists the names LookPath reports as present.
	Executables map[string]bool

	// Runs and Queries record every invocation in order.
	Runs    []Command
	Queries []Command
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses:   make(map[string]FakeResponse),
		Executables: make(map[string]bool),
	}
}

func (f *FakeRunner) Run(ctx context.Context, c Command) (*Result, error) {
	f.Runs = append(f.Runs, c)
	return f.respond(c)
}

func (f *FakeRunner) Query(ctx context.Context, c Command) (*Result, error) {
	f.Queries = append(f.Queries, c)
	return f.respond(c)
}

func (f *FakeRunner) LookPath(name string) bool {
	return f.Executables[name]
}

// RunLines returns Line() of every recorded Run call.
func (f *FakeRunner) RunLines() []string {
	lines := make([]string, len(f.Runs))
	for i, c := range f.Runs {
		lines[i] = c.Line()
	}
	return lines
}

func (f *FakeRunner) respond(c Command) (*Result, error) {
	resp, ok := f.Responses[c.Line()]
	if !ok {
		return &Result{}, nil
	}
	result := &Result{Stdout: resp.Stdout, ExitCode: resp.ExitCode}
	if resp.Err != nil {
		return result, resp.Err
	}
	if resp.ExitCode != 0 {
		return result, fmt.Errorf("%w: %s exited with code %d", domain.ErrExternalTool, c.label(), resp.ExitCode)
	}
	return result, nil
}
