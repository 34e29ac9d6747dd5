package source

import (
	"os"
	"strings"

	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

// ReadSession opens a discovered file and hands its lines to the transcript
// engine. A vanished file reconstructs as an empty session (message_count
// zero) rather than an error; any other open or read failure propagates.
func ReadSession(df DiscoveredFile, opts transcript.Options) (*transcript.Result, error) {
	src := transcript.Source{
		SessionID:    df.SessionID,
		ProjectName:  df.Project,
		FilePath:     df.Path,
		LastModified: df.LastModified,
	}

	f, err := os.Open(df.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyResult(src), nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if fi, err := f.Stat(); err == nil {
		src.LastModified = fi.ModTime()
	}

	return transcript.Reconstruct(src, f, opts)
}

func emptyResult(src transcript.Source) *transcript.Result {
	res, _ := transcript.Reconstruct(src, strings.NewReader(""), transcript.Options{})
	return res
}
