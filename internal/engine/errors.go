package engine

import "errors"

var (
	// ErrCommitInFlight is returned when a commit starts while another
	// pass is still running. Only one pass may mutate rules at a time.
	ErrCommitInFlight = errors.New("a copy operation is already in progress")

	// ErrNoTrackedFiles is returned when a commit starts with an empty
	// tracked list.
	ErrNoTrackedFiles = errors.New("no tracked files to copy")

	// ErrNoDestination is returned when the destination directory is
	// unset or unusable.
	ErrNoDestination = errors.New("destination directory is not set")

	// ErrBlockingConflicts is returned when the planned names contain
	// intra-batch duplicates; no policy can resolve those.
	ErrBlockingConflicts = errors.New("planned names conflict within the batch")

	// ErrCommitCancelled is returned when the prompter declines missing
	// tags or chooses to cancel at the policy step.
	ErrCommitCancelled = errors.New("copy operation cancelled")
)
