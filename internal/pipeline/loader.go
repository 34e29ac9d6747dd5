package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/jovezhong/claude-code-history-viewer/internal/source"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Sessions     []*transcript.Result
	TotalFiles   int
	ParsedFiles  int
	SkippedLines int
	FileErrors   int
	ProjectCount int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and reconstructs all session files from the Claude data
// directory using a bounded worker pool. Sessions share no mutable state, so
// workers reconstruct independently and results merge after the pool drains.
func Load(claudeDir string, opts transcript.Options, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(claudeDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", claudeDir, err)
	}

	result := &LoadResult{
		TotalFiles:   len(files),
		ProjectCount: source.CountProjects(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	type fileResult struct {
		res *transcript.Result
		err error
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]fileResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				res, err := source.ReadSession(files[idx], opts)
				results[idx] = fileResult{res: res, err: err}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	for _, fr := range results {
		if fr.err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.SkippedLines += len(fr.res.SkippedLines)
		result.Sessions = append(result.Sessions, fr.res)
	}

	return result, nil
}

// GroupByProject buckets reconstructed sessions by project name.
func GroupByProject(sessions []*transcript.Result) map[string][]*transcript.Result {
	byProject := make(map[string][]*transcript.Result)
	for _, res := range sessions {
		byProject[res.Session.ProjectName] = append(byProject[res.Session.ProjectName], res)
	}
	return byProject
}

// ProjectRollups folds each project's sessions into its own rollup.
func ProjectRollups(sessions []*transcript.Result, toolError transcript.ErrorPredicate) map[string]*Rollup {
	rollups := make(map[string]*Rollup)
	for project, group := range GroupByProject(sessions) {
		r := NewRollup()
		r.ToolError = toolError
		for _, res := range group {
			r.AddSession(res)
		}
		rollups[project] = r
	}
	return rollups
}
