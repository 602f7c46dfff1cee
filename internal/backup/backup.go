package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"time"

	"moneylens/internal/storage"
)

// Store is the part of the storage client the commands need.
type Store interface {
	List(ctx context.Context, bucket, prefix string) ([]storage.Object, error)
	Upload(ctx context.Context, bucket, path string, content []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket string, paths []string) ([]storage.Object, error)
}

// Runner executes commands against a Store and prints their results.
type Runner struct {
	store Store
	out   io.Writer
	now   func() time.Time
}

// NewRunner creates a Runner writing to out.
func NewRunner(store Store, out io.Writer) *Runner {
	return &Runner{store: store, out: out, now: time.Now}
}

// List prints the name of every object under prefix.
func (r *Runner) List(ctx context.Context, bucket, prefix string) error {
	objects, err := r.store.List(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		fmt.Fprintln(r.out, obj.Name)
	}
	return nil
}

// Upload sends the local file to dest in bucket. An empty dest uses the
// file's base name.
func (r *Runner) Upload(ctx context.Context, bucket, file, dest string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if dest == "" {
		dest = path.Base(file)
	}
	key, err := r.store.Upload(ctx, bucket, dest, content, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Uploaded to %s\n", key)
	return nil
}

// PruneOptions configures Prune. Zero Keep or Days disables that rule.
type PruneOptions struct {
	Prefix string
	Keep   int
	Days   int
	DryRun bool
}

// Prune deletes old objects under the prefix, or lists them on a dry run.
func (r *Runner) Prune(ctx context.Context, bucket string, opts PruneOptions) error {
	objects, err := r.store.List(ctx, bucket, opts.Prefix)
	if err != nil {
		return err
	}
	doomed := PlanPrune(objects, opts.Keep, opts.Days, r.now())

	if opts.DryRun {
		fmt.Fprintln(r.out, "Files that would be deleted:")
		for _, obj := range doomed {
			fmt.Fprintln(r.out, obj.Name)
		}
		return nil
	}

	paths := make([]string, len(doomed))
	for i, obj := range doomed {
		paths[i] = objectPath(opts.Prefix, obj.Name)
	}
	removed, err := r.store.Remove(ctx, bucket, paths)
	if err != nil {
		return err
	}
	for _, obj := range removed {
		fmt.Fprintf(r.out, "Deleted %s\n", obj.Name)
	}
	return nil
}

// PlanPrune picks the objects to delete: those updated more than days ago
// and those past the newest keep. Each name appears once, age matches
// first. Folder placeholders, which carry no id, are never picked.
func PlanPrune(objects []storage.Object, keep, days int, now time.Time) []storage.Object {
	files := make([]storage.Object, 0, len(objects))
	for _, obj := range objects {
		if obj.ID != "" {
			files = append(files, obj)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UpdatedAt.After(files[j].UpdatedAt)
	})

	var candidates []storage.Object
	if days > 0 {
		cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
		for _, obj := range files {
			if obj.UpdatedAt.Before(cutoff) {
				candidates = append(candidates, obj)
			}
		}
	}
	if keep > 0 && len(files) > keep {
		candidates = append(candidates, files[keep:]...)
	}

	seen := make(map[string]bool, len(candidates))
	doomed := []storage.Object{}
	for _, obj := range candidates {
		if seen[obj.Name] {
			continue
		}
		seen[obj.Name] = true
		doomed = append(doomed, obj)
	}
	return doomed
}

func objectPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
