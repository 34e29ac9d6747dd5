package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/jovezhong/claude-code-history-viewer/internal/source"
	"github.com/jovezhong/claude-code-history-viewer/internal/store"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

// IndexResult is the fast session index: metadata and token stats for every
// session, without the message sequences. Unchanged files come from the
// cache; only changed files get reparsed.
type IndexResult struct {
	Entries      []store.Entry
	TotalFiles   int
	CacheHits    int
	Reparsed     int
	FileErrors   int
	ProjectCount int
}

// LoadIndex diffs discovered files against the cache, reparses only the
// changed ones, and returns the combined session index.
func LoadIndex(claudeDir string, opts transcript.Options, cache *store.Cache, progressFn ProgressFunc) (*IndexResult, error) {
	files, err := source.ScanDir(claudeDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", claudeDir, err)
	}

	result := &IndexResult{
		TotalFiles:   len(files),
		ProjectCount: source.CountProjects(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	if len(unchanged) > 0 {
		cachedEntries, err := cache.LoadAllSessions()
		if err != nil {
			return nil, fmt.Errorf("loading cached sessions: %w", err)
		}
		for _, e := range cachedEntries {
			if _, ok := unchanged[e.Session.FilePath]; ok {
				result.Entries = append(result.Entries, e)
			}
		}
	}

	if len(toReparse) > 0 {
		numWorkers := runtime.GOMAXPROCS(0)
		if numWorkers < 1 {
			numWorkers = 4
		}
		if numWorkers > len(toReparse) {
			numWorkers = len(toReparse)
		}

		type fileResult struct {
			res *transcript.Result
			err error
		}

		work := make(chan int, len(toReparse))
		results := make([]fileResult, len(toReparse))
		var wg sync.WaitGroup
		var processed atomic.Int64

		for i := range toReparse {
			work <- i
		}
		close(work)

		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func() {
				defer wg.Done()
				for idx := range work {
					res, err := source.ReadSession(toReparse[idx], opts)
					results[idx] = fileResult{res: res, err: err}
					n := processed.Add(1)
					if progressFn != nil {
						progressFn(int(n)+result.CacheHits, result.TotalFiles)
					}
				}
			}()
		}

		wg.Wait()

		for i, fr := range results {
			if fr.err != nil {
				result.FileErrors++
				continue
			}
			entry := store.Entry{Session: fr.res.Session, Stats: fr.res.Stats}
			result.Entries = append(result.Entries, entry)

			if info, err := os.Stat(toReparse[i].Path); err == nil {
				_ = cache.SaveSession(entry, info.ModTime().UnixNano(), info.Size())
			}
		}
	}

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "claude-code-history-viewer")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "claude-code-history-viewer")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "sessions.db")
}
