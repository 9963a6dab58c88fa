// Package registry provides durable storage for provisioned domains.
//
// The registry is a single JSON document mapping domain names to
// domain.DomainRecord values, stored at /etc/localstacker/domains.json by
// default. Every write goes to a temporary file that is renamed over the
// document, so readers only ever observe a complete document. Mutations
// hold an exclusive advisory lock on a sibling ".lock" file and re-read the
// document under that lock, so concurrent invocations serialize instead of
// losing updates.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"nusacloud/localstacker/internal/domain"
	"nusacloud/localstacker/internal/fsops"
)

// Store defines the registry operations used by the workflows.
type Store interface {
	// Get returns the record for name and whether it exists.
	Get(name string) (domain.DomainRecord, bool)

	// List returns all records sorted by domain name.
	List() []domain.DomainRecord

	// Upsert inserts or replaces the record and persists the registry.
	Upsert(rec domain.DomainRecord) (domain.UpsertResult, error)

	// Insert adds a new record, failing with ErrAlreadyExists when the
	// domain is registered.
	Insert(rec domain.DomainRecord) error

	// Remove deletes and returns the record, failing with ErrNotFound
	// when the domain is not registered.
	Remove(name string) (domain.DomainRecord, error)
}

// document is the on-disk layout.
type document struct {
	Domains map[string]domain.DomainRecord `json:"domains"`
}

// Options configures a Registry.
type Options struct {
	// DryRun skips every write; mutations are logged and report the result
	// they would have had.
	DryRun bool
	Logger *slog.Logger
}

// Registry is the file-backed Store.
type Registry struct {
	path   string
	dryRun bool
	logger *slog.Logger
	doc    document
}

// Open loads the registry at path. A missing document yields an empty
// registry.
func Open(path string, opts Options) (*Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{path: path, dryRun: opts.DryRun, logger: logger}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the location of the backing document.
func (r *Registry) Path() string { return r.path }

// Load replaces the in-memory state with the document on disk.
func (r *Registry) Load() error {
	doc, err := readDocument(r.path)
	if err != nil {
		return err
	}
	r.doc = doc
	return nil
}

// Persist writes the in-memory state to disk atomically.
func (r *Registry) Persist() error {
	if r.dryRun {
		r.logger.Info("Would save registry", "path", r.path, "domains", len(r.doc.Domains), "dry_run", true)
		return nil
	}
	return writeDocument(r.path, r.doc)
}

func (r *Registry) Get(name string) (domain.DomainRecord, bool) {
	rec, ok := r.doc.Domains[name]
	return rec, ok
}

func (r *Registry) List() []domain.DomainRecord {
	records := make([]domain.DomainRecord, 0, len(r.doc.Domains))
	for _, rec := range r.doc.Domains {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Domain < records[j].Domain })
	return records
}

func (r *Registry) Upsert(rec domain.DomainRecord) (domain.UpsertResult, error) {
	var result domain.UpsertResult
	err := r.mutate(func(doc *document) error {
		if _, exists := doc.Domains[rec.Domain]; exists {
			result = domain.Updated
		} else {
			result = domain.Created
		}
		doc.Domains[rec.Domain] = rec
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

func (r *Registry) Insert(rec domain.DomainRecord) error {
	return r.mutate(func(doc *document) error {
		if _, exists := doc.Domains[rec.Domain]; exists {
			return fmt.Errorf("%w: domain %q is already registered", domain.ErrAlreadyExists, rec.Domain)
		}
		doc.Domains[rec.Domain] = rec
		return nil
	})
}

func (r *Registry) Remove(name string) (domain.DomainRecord, error) {
	var removed domain.DomainRecord
	err := r.mutate(func(doc *document) error {
		rec, ok := doc.Domains[name]
		if !ok {
			return fmt.Errorf("%w: domain %q is not registered", domain.ErrNotFound, name)
		}
		removed = rec
		delete(doc.Domains, name)
		return nil
	})
	if err != nil {
		return domain.DomainRecord{}, err
	}
	return removed, nil
}

// mutate runs a read-modify-write cycle. Outside dry-run mode it holds the
// registry lock, re-reads the document, applies fn and persists the result
// before updating the in-memory state.
func (r *Registry) mutate(fn func(doc *document) error) error {
	if r.dryRun {
		doc := r.doc.clone()
		if err := fn(&doc); err != nil {
			return err
		}
		r.logger.Info("Would save registry", "path", r.path, "domains", len(doc.Domains), "dry_run", true)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: create registry directory: %w", domain.ErrIO, err)
	}

	unlock, err := lockFile(r.path + ".lock")
	if err != nil {
		return fmt.Errorf("%w: lock registry: %w", domain.ErrIO, err)
	}
	defer unlock()

	doc, err := readDocument(r.path)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	if err := writeDocument(r.path, doc); err != nil {
		return err
	}

	r.doc = doc
	return nil
}

func (d document) clone() document {
	c := document{Domains: make(map[string]domain.DomainRecord, len(d.Domains))}
	for k, v := range d.Domains {
		c.Domains[k] = v
	}
	return c
}

func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document{Domains: map[string]domain.DomainRecord{}}, nil
		}
		return document{}, fmt.Errorf("%w: read registry %s: %w", domain.ErrIO, path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("%w: parse %s: %w", domain.ErrConfigCorrupt, path, err)
	}
	if doc.Domains == nil {
		doc.Domains = map[string]domain.DomainRecord{}
	}
	return doc, nil
}

func writeDocument(path string, doc document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create registry directory %s: %w", domain.ErrIO, dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode registry: %w", domain.ErrIO, err)
	}
	data = append(data, '\n')

	if err := fsops.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write registry %s: %w", domain.ErrIO, path, err)
	}
	return nil
}
