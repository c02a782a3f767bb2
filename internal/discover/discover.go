// Package discover enumerates proof directories under a root.
//
// A proof directory is any direct subdirectory of the root that
// contains the marker file (a Makefile for CBMC proofs). Enumeration
// happens once, before any job is scheduled, and the result order is
// fixed so a batch is reproducible.
package discover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Proof identifies one unit of work. Name is the directory base name
// and is what ends up in the CSV; Dir is where make runs.
type Proof struct {
	Name string
	Dir  string
}

// Proofs scans root for subdirectories containing the marker file and
// returns them sorted by name. Failure to read the root itself is
// fatal; unreadable or non-qualifying entries are skipped. The skips
// are deliberate best effort: a permission problem on one candidate
// should not kill a batch of hundreds.
func Proofs(ctx context.Context, root, marker string) ([]Proof, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading proofs root %s: %w", root, err)
	}

	proofs := make([]Proof, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		info, err := os.Stat(filepath.Join(dir, marker))
		if err != nil || !info.Mode().IsRegular() {
			slog.DebugContext(ctx, "skipping non-proof entry", "dir", dir)
			continue
		}
		proofs = append(proofs, Proof{Name: entry.Name(), Dir: dir})
	}

	sort.Slice(proofs, func(i, j int) bool {
		return proofs[i].Name < proofs[j].Name
	})
	return proofs, nil
}
