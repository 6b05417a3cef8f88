package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/talekit/talekit"
	"github.com/talekit/talekit/diag"
)

func checkCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "check <file|dir>...",
		Short: "Validate scripts and print diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectScriptPaths(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no script files found")
			}
			failed := checkAll(cmd, paths)
			if watch {
				return watchAndRecheck(cmd, args, paths)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(paths))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-validate on file changes")
	return cmd
}

// checkAll validates every file concurrently and prints diagnostics in
// stable path order. It returns the number of files with errors.
func checkAll(cmd *cobra.Command, paths []string) int {
	type result struct {
		path  string
		diags []diag.Diagnostic
		err   error
	}
	results := make([]result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			b, err := os.ReadFile(path)
			if err != nil {
				results[i] = result{path: path, err: err}
				return
			}
			_, diags := talekit.Parse(string(b))
			results[i] = result{path: path, diags: diags}
		}(i, path)
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.path, res.err)
			failed++
			continue
		}
		for _, d := range res.diags {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", res.path, d)
		}
		if diag.HasErrors(res.diags) {
			failed++
		}
	}
	if failed == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d files\n", len(paths))
	}
	return failed
}

// watchAndRecheck re-validates the whole set whenever any watched file
// or directory changes. Events are debounced: editors typically emit
// several writes per save.
func watchAndRecheck(cmd *cobra.Command, roots, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	dirs := map[string]bool{}
	for _, p := range paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "watching for changes...")

	var timer *time.Timer
	recheck := make(chan struct{}, 1)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isScriptPath(ev.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case recheck <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		case <-recheck:
			paths, err := collectScriptPaths(roots)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				continue
			}
			checkAll(cmd, paths)
		}
	}
}

func collectScriptPaths(args []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isScriptPath(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func isScriptPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tale" || ext == ".dlg"
}
