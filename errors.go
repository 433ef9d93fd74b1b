package clusterpoints

import "github.com/cockroachdb/errors"

// Sentinel errors. Check them with errors.Is; returned errors wrap them with
// context about the offending input.
var (
	// ErrInvalidConfig marks every configuration error. Configuration errors
	// are fatal and never worth retrying with the same input.
	ErrInvalidConfig = errors.New("clusterpoints: invalid configuration")

	// ErrTooFewPoints means fewer usable points (or cluster features) are
	// available than clusters were requested.
	ErrTooFewPoints = errors.New("clusterpoints: too few points for the requested number of clusters")

	// ErrConstantAttribute means the attribute field has a single distinct
	// value, so it cannot be standardized.
	ErrConstantAttribute = errors.New("clusterpoints: attribute must not be constant")

	// ErrNonNumericAttribute means an attribute value could not be read as a number.
	ErrNonNumericAttribute = errors.New("clusterpoints: attribute must be numeric")

	// ErrMissingLinkage means hierarchical clustering was requested without a linkage.
	ErrMissingLinkage = errors.New("clusterpoints: hierarchical clustering requires a linkage")

	// ErrUnknownLinkage means a linkage name did not match any known linkage.
	ErrUnknownLinkage = errors.New("clusterpoints: unknown linkage")

	// ErrEmptyCluster means a K-means round left a cluster without members.
	// The run is abandoned; retry with another seed or a smaller k.
	ErrEmptyCluster = errors.New("clusterpoints: k-means produced an empty cluster")

	// ErrCanceled means the run was canceled on request. It is a terminal
	// state of its own, not a failure.
	ErrCanceled = errors.New("clusterpoints: canceled")

	// ErrTaskNotFinished means a task result was read before the task
	// reached a terminal state.
	ErrTaskNotFinished = errors.New("clusterpoints: task has not finished")

	// ErrTaskStarted means Start was called on a task that already left Idle.
	ErrTaskStarted = errors.New("clusterpoints: task already started")
)

// configErrorf builds a configuration error carrying ErrInvalidConfig.
func configErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf("clusterpoints: "+format, args...), ErrInvalidConfig)
}

// markConfig tags err as a configuration error while keeping its own sentinel.
func markConfig(err error) error {
	return errors.Mark(err, ErrInvalidConfig)
}
