package services

import (
	"context"
	"fmt"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces/gateways"
)

// SnapshotOptions selects which fields each record carries.
// Fields wins over Verbose; with neither set DefaultFields are used.
type SnapshotOptions struct {
	Verbose bool
	Fields  []string
}

// SnapshotResult is delivered by the asynchronous Snapshot call
type SnapshotResult struct {
	Records []entities.ProcessRecord
	Err     error
}

// Snapshotter forwards snapshot calls to a loaded native module
type Snapshotter struct {
	module gateways.NativeModule
}

// NewSnapshotter creates a snapshotter for module
func NewSnapshotter(module gateways.NativeModule) *Snapshotter {
	return &Snapshotter{module: module}
}

// SnapshotSync lists running processes
func (s *Snapshotter) SnapshotSync(opts SnapshotOptions) ([]entities.ProcessRecord, error) {
	fields, err := resolveFields(opts)
	if err != nil {
		return nil, err
	}

	raw, err := s.module.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}

	records := make([]entities.ProcessRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, project(r, fields))
	}
	return records, nil
}

// Snapshot lists running processes in the background. The channel yields
// exactly one result and is then closed.
func (s *Snapshotter) Snapshot(ctx context.Context, opts SnapshotOptions) <-chan SnapshotResult {
	out := make(chan SnapshotResult, 1)
	go func() {
		defer close(out)

		done := make(chan SnapshotResult, 1)
		go func() {
			records, err := s.SnapshotSync(opts)
			done <- SnapshotResult{Records: records, Err: err}
		}()

		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			out <- SnapshotResult{Err: ctx.Err()}
		}
	}()
	return out
}

func resolveFields(opts SnapshotOptions) ([]string, error) {
	if len(opts.Fields) > 0 {
		seen := make(map[string]bool, len(opts.Fields))
		fields := make([]string, 0, len(opts.Fields))
		for _, f := range opts.Fields {
			if !entities.IsAllowedField(f) {
				return nil, fmt.Errorf("unknown field %q (allowed: %v)", f, entities.AllowedFields)
			}
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
		return fields, nil
	}
	if opts.Verbose {
		return entities.AllowedFields, nil
	}
	return entities.DefaultFields, nil
}

func project(r entities.ProcessRecord, fields []string) entities.ProcessRecord {
	out := make(entities.ProcessRecord, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}
