package status

import (
	"context"
	"errors"
)

// StaticPorts is a PortChecker for testing. Ports mapped to true listen.
type StaticPorts map[int]bool

func (s StaticPorts) Listening(port int) bool { return s[port] }

// StaticProber is an HTTPSProber for testing. Hosts missing from Codes are
// unreachable.
type StaticProber struct {
	Codes map[string]int
}

func (s StaticProber) Probe(ctx context.Context, host string) (int, error) {
	code, ok := s.Codes[host]
	if !ok {
		return 0, errors.New("connection refused")
	}
	return code, nil
}
