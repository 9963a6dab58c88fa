package status

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"nusacloud/localstacker/internal/retry"
)

const (
	procNetTCP  = "/proc/net/tcp"
	procNetTCP6 = "/proc/net/tcp6"

	// tcpListen is the st column value of a listening socket.
	tcpListen = "0A"
)

// PortChecker reports whether something listens on a local TCP port.
type PortChecker interface {
	Listening(port int) bool
}

// HTTPSProber attempts an HTTPS request against a host.
type HTTPSProber interface {
	Probe(ctx context.Context, host string) (statusCode int, err error)
}

// SocketTable checks listening sockets through the kernel's socket tables,
// falling back to a loopback dial when they cannot be read.
type SocketTable struct {
	Files       []string
	DialTimeout time.Duration
}

// NewSocketTable returns a SocketTable reading /proc/net/tcp and tcp6.
func NewSocketTable() *SocketTable {
	return &SocketTable{Files: []string{procNetTCP, procNetTCP6}, DialTimeout: time.Second}
}

func (s *SocketTable) Listening(port int) bool {
	readAny := false
	for _, path := range s.Files {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		readAny = true
		found := listeningIn(f, port)
		f.Close()
		if found {
			return true
		}
	}
	if readAny {
		return false
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), s.DialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// listeningIn scans a /proc/net/tcp formatted table for a LISTEN socket
// bound to port on any address.
func listeningIn(r io.Reader, port int) bool {
	scanner := bufio.NewScanner(r)
	scanner.Scan() // header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[3] != tcpListen {
			continue
		}
		_, hexPort, ok := strings.Cut(fields[1], ":")
		if !ok {
			continue
		}
		p, err := strconv.ParseUint(hexPort, 16, 16)
		if err != nil {
			continue
		}
		if int(p) == port {
			return true
		}
	}
	return false
}

// HTTPClientProber issues a GET to https://<host>/ without verifying the
// certificate or following redirects. Connections refused or reset while
// nginx reloads are tried again, but the whole probe never outlives timeout.
type HTTPClientProber struct {
	client  *http.Client
	timeout time.Duration
	retry   retry.Policy
}

// NewHTTPSProber returns a prober that gives up after timeout.
func NewHTTPSProber(timeout time.Duration) *HTTPClientProber {
	return &HTTPClientProber{
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
		retry:   retry.Policy{Attempts: 2, Delay: 250 * time.Millisecond, MaxDelay: time.Second},
	}
}

func (p *HTTPClientProber) Probe(ctx context.Context, host string) (int, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var code int
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+host+"/", nil)
		if err != nil {
			return err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		code = resp.StatusCode
		return nil
	})
	return code, err
}

// Reachable reports whether code counts as a successful probe.
func Reachable(code int) bool {
	return code >= 200 && code < 400
}

// parseCertificate decodes the first PEM certificate in data.
func parseCertificate(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return cert, nil
}
