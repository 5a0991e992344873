package engine

import (
	"context"
	"errors"
)

// ErrFileGone is returned by a CommitSource when a file no longer exists
// at the requested revision. Callers skip the file; the request as a
// whole does not fail.
var ErrFileGone = errors.New("file does not exist at this revision")

// CommitSource supplies per-commit change information. Implementations
// (source-control API clients) live outside this module; the engine only
// consumes fully materialized values.
type CommitSource interface {
	// ChangedFiles returns the paths changed by a commit.
	ChangedFiles(ctx context.Context, repo, commit string) ([]string, error)

	// FileContent returns the full content of a file at a revision, or
	// ErrFileGone when the file is absent there.
	FileContent(ctx context.Context, repo, path, revision string) ([]byte, error)
}
