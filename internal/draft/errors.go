package draft

import "errors"

var (
	// ErrDeleteFailed wraps the first queued deletion that failed.
	ErrDeleteFailed = errors.New("pending deletion failed")

	// ErrParentFailed is returned when the parent record could not be saved.
	ErrParentFailed = errors.New("parent save failed")

	// ErrItemsFailed wraps every child or item save that failed in one pass.
	ErrItemsFailed = errors.New("one or more records failed to save")

	// ErrSuperseded is returned by a save that was overtaken by a newer one.
	ErrSuperseded = errors.New("save superseded by a newer save")

	// ErrNothingToRetry is returned by Retry when the last save did not fail.
	ErrNothingToRetry = errors.New("no failed save to retry")

	// ErrDuplicateID reports two records sharing a server id.
	ErrDuplicateID = errors.New("duplicate server id")
)

// envelopeError turns a rejected envelope into an error.
func envelopeError(env Envelope) error {
	if env.Error != "" {
		return errors.New(env.Error)
	}
	return errors.New("request rejected")
}

// callError folds a transport fault and a rejected envelope into one error.
func callError(env Envelope, err error, requireID bool) error {
	switch {
	case err != nil:
		return err
	case !env.Success:
		return envelopeError(env)
	case requireID && env.ID == 0:
		return errors.New("response carried no id")
	}
	return nil
}
