// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (extract.go worker-pool shape)

package vpk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/woozymasta/vpkpack/packfile"
)

// extractWorkItem pairs a baked entry with its destination path under dstDir.
type extractWorkItem struct {
	dstPath string
	entry   packfile.Entry
}

// ExtractAll writes every baked entry to dstDir, under its virtual path.
// Extraction is parallelized across runtime.GOMAXPROCS workers; each
// entry's data is read independently via ReadEntry, which only opens its
// own file handles and touches no shared mutable state, so concurrent
// reads of distinct entries are safe even though VPK mutation methods are
// not meant to run concurrently with Bake.
func (v *VPK) ExtractAll(ctx context.Context, dstDir string) error {
	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("vpk: resolve output dir: %w", err)
	}
	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("vpk: create output dir: %w", err)
	}

	var items []extractWorkItem
	for _, list := range v.Entries {
		for _, entry := range list {
			dstPath := filepath.Join(dstRootAbs, filepath.FromSlash(entry.Path))
			if err := os.MkdirAll(filepath.Dir(dstPath), 0o750); err != nil {
				return fmt.Errorf("vpk: create entry dir: %w", err)
			}
			items = append(items, extractWorkItem{dstPath: dstPath, entry: entry})
		}
	}
	if len(items) == 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	taskCh := make(chan extractWorkItem, len(items))
	errCh := make(chan error, len(items))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				select {
				case errCh <- v.extractOne(task):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			close(taskCh)
			wg.Wait()
			return ctx.Err()
		case taskCh <- item:
		}
	}
	close(taskCh)
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (v *VPK) extractOne(task extractWorkItem) error {
	data, err := v.ReadEntry(task.entry)
	if err != nil {
		return fmt.Errorf("vpk: read entry %s: %w", task.entry.Path, err)
	}
	if err := os.WriteFile(task.dstPath, data, 0o640); err != nil {
		return fmt.Errorf("vpk: write entry %s: %w", task.entry.Path, err)
	}
	return nil
}
