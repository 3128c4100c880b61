package apply

import (
	"gitlab.com/tozd/go/errors"
)

// FileResult is the outcome of committing one file.
type FileResult struct {
	Path    string `json:"path"`
	Matches int    `json:"matches"` // matches recorded during the search
	Changed bool   `json:"changed"` // contents differed after replacement
	Err     error  `json:"-"`
}

// OK reports whether the file was committed without error.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Report is the outcome of a commit: partial success is a valid result.
type Report struct {
	Files []FileResult `json:"files"`
}

// Succeeded returns the number of files committed without error.
func (r *Report) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.OK() {
			n++
		}
	}
	return n
}

// Changed returns the number of files whose contents changed.
func (r *Report) Changed() int {
	n := 0
	for _, f := range r.Files {
		if f.OK() && f.Changed {
			n++
		}
	}
	return n
}

// Failed returns the files that could not be committed.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if !f.OK() {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err joins every per-file failure, nil when all files succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, errors.Errorf("%s: %w", f.Path, f.Err))
	}
	return errors.Join(errs...)
}
