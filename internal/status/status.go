// Package status compares the registry against what is actually present on
// the machine. It never modifies anything.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/registry"
)

// Service states reported in Report.ServiceState.
const (
	ServiceRunning  = "running"
	ServiceStopped  = "stopped"
	ServiceNotFound = "not found"
)

// Report is the observed state of one registered domain.
type Report struct {
	Domain  string `json:"domain"`
	Port    int    `json:"port"`
	Service string `json:"service,omitempty"`

	CertificatePresent bool       `json:"certificate_present"`
	CertificateExpires *time.Time `json:"certificate_expires,omitempty"`
	ConfigPresent      bool       `json:"config_present"`
	SiteEnabled        bool       `json:"site_enabled"`
	RecordedEnabled    bool       `json:"recorded_enabled"`
	BackendListening   bool       `json:"backend_listening"`
	ServiceState       string     `json:"service_state,omitempty"`
	HTTPSReachable     bool       `json:"https_reachable"`
	HTTPSStatus        int        `json:"https_status,omitempty"`

	// Findings lists every divergence between the record and reality.
	Findings []string `json:"findings"`
}

// Healthy reports whether no drift was found.
func (r *Report) Healthy() bool { return len(r.Findings) == 0 }

// EnabledPather locates the enabled reference for a domain.
type EnabledPather interface {
	EnabledPath(domain string) string
}

// Deps are the read-only collaborators an Evaluator probes.
type Deps struct {
	Store    registry.Store
	FS       domain.FileSystem
	Proxy    EnabledPather
	Services domain.ServiceController
	Ports    PortChecker
	HTTPS    HTTPSProber
	Logger   *slog.Logger
	Now      func() time.Time
}

// Evaluator builds status reports.
type Evaluator struct {
	deps Deps
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(deps Deps) *Evaluator {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Evaluator{deps: deps}
}

// Evaluate reports on a single registered domain.
func (e *Evaluator) Evaluate(ctx context.Context, name string) (*Report, error) {
	rec, ok := e.deps.Store.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: domain %q", domain.ErrNotFound, name)
	}
	return e.evaluate(ctx, rec), nil
}

// EvaluateAll reports on every registered domain, one after another.
func (e *Evaluator) EvaluateAll(ctx context.Context) []*Report {
	records := e.deps.Store.List()
	reports := make([]*Report, 0, len(records))
	for _, rec := range records {
		reports = append(reports, e.evaluate(ctx, rec))
	}
	return reports
}

func (e *Evaluator) evaluate(ctx context.Context, rec domain.DomainRecord) *Report {
	r := &Report{
		Domain:          rec.Domain,
		Port:            rec.Port,
		Service:         rec.Service,
		RecordedEnabled: rec.Enabled,
		Findings:        []string{},
	}

	r.CertificatePresent = e.deps.FS.Exists(rec.CertificatePath) && e.deps.FS.Exists(rec.KeyPath)
	if !r.CertificatePresent {
		r.addFinding("certificate or key file missing")
	} else {
		e.checkExpiry(r, rec.CertificatePath)
	}

	r.ConfigPresent = e.deps.FS.Exists(rec.ProxyConfigPath)
	if !r.ConfigPresent {
		r.addFinding("nginx configuration %s missing", rec.ProxyConfigPath)
	}

	r.SiteEnabled = e.deps.FS.Exists(e.deps.Proxy.EnabledPath(rec.Domain))
	switch {
	case rec.Enabled && !r.SiteEnabled:
		r.addFinding("recorded as enabled but site is not enabled")
	case !rec.Enabled && r.SiteEnabled:
		r.addFinding("recorded as disabled but site is enabled")
	}

	r.BackendListening = e.deps.Ports.Listening(rec.Port)
	if !r.BackendListening {
		r.addFinding("backend port %d is not listening", rec.Port)
	}

	if rec.Service != "" {
		r.ServiceState = e.serviceState(ctx, rec.Service)
		switch r.ServiceState {
		case ServiceNotFound:
			r.addFinding("service %s not found", rec.Service)
		case ServiceStopped:
			r.addFinding("service %s is not running", rec.Service)
		}
	}

	code, err := e.deps.HTTPS.Probe(ctx, rec.Domain)
	r.HTTPSStatus = code
	r.HTTPSReachable = err == nil && Reachable(code)
	if !r.HTTPSReachable {
		if err != nil {
			e.deps.Logger.Debug("HTTPS probe failed", "domain", rec.Domain, "error", err)
		}
		r.addFinding("https://%s is not reachable", rec.Domain)
	}

	return r
}

func (e *Evaluator) checkExpiry(r *Report, certPath string) {
	data, err := e.deps.FS.ReadFile(certPath)
	if err != nil {
		e.deps.Logger.Debug("Reading certificate failed", "path", certPath, "error", err)
		return
	}
	cert, err := parseCertificate(data)
	if err != nil {
		r.addFinding("certificate %s is unreadable: %v", certPath, err)
		return
	}

	expires := cert.NotAfter.UTC()
	r.CertificateExpires = &expires
	if e.deps.Now().After(expires) {
		r.addFinding("certificate expired on %s", expires.Format(time.DateOnly))
	}
}

func (r *Report) addFinding(format string, args ...any) {
	r.Findings = append(r.Findings, fmt.Sprintf(format, args...))
}

// serviceState checks unit existence first: systemctl reports an unknown
// unit as inactive, which would otherwise read as stopped.
func (e *Evaluator) serviceState(ctx context.Context, name string) string {
	exists, err := e.deps.Services.Exists(ctx, name)
	if err != nil {
		e.deps.Logger.Debug("Service lookup failed", "service", name, "error", err)
		return ServiceNotFound
	}
	if !exists {
		return ServiceNotFound
	}

	running, err := e.deps.Services.IsRunning(ctx, name)
	if err != nil {
		e.deps.Logger.Debug("Service status lookup failed", "service", name, "error", err)
		return ServiceStopped
	}
	if running {
		return ServiceRunning
	}
	return ServiceStopped
}
