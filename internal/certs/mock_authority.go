package certs

import (
	"context"
	"path/filepath"

	"nusacloud/localstacker/internal/fsops"
)

// FakeAuthority is an in-memory domain.CertificateAuthority for testing.
// Issued certificates are placeholder files written into FS.
type FakeAuthority struct {
	FS         *fsops.MemFS
	StagingDir string
	Available  bool

	// IssueErr, when set, is returned by IssueCertificate.
	IssueErr error

	// Calls records each mutating call, e.g. "issue app.local".
	Calls []string
}

// NewFakeAuthority returns a FakeAuthority whose tool is already installed.
func NewFakeAuthority(fs *fsops.MemFS, stagingDir string) *FakeAuthority {
	return &FakeAuthority{FS: fs, StagingDir: stagingDir, Available: true}
}

func (f *FakeAuthority) IsToolAvailable() bool { return f.Available }

func (f *FakeAuthority) InstallTool(ctx context.Context) error {
	f.Calls = append(f.Calls, "install-tool")
	f.Available = true
	return nil
}

func (f *FakeAuthority) InstallLocalCA(ctx context.Context, caRoot string) error {
	f.Calls = append(f.Calls, "install-ca "+caRoot)
	return nil
}

func (f *FakeAuthority) IssueCertificate(ctx context.Context, name, caRoot string) error {
	if f.IssueErr != nil {
		return f.IssueErr
	}
	f.Calls = append(f.Calls, "issue "+name)
	cert, key := f.IssuedPaths(name)
	f.FS.Put(cert, "CERT "+name)
	f.FS.Put(key, "KEY "+name)
	return nil
}

func (f *FakeAuthority) IssuedPaths(name string) (string, string) {
	return filepath.Join(f.StagingDir, name+".pem"), filepath.Join(f.StagingDir, name+"-key.pem")
}
