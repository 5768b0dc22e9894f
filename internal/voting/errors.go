package voting

import "errors"

// Engine failures a caller can act on. Anything else coming out of the
// engine is a storage failure wrapped with context.
var (
	// ErrInvalidArgument means a required input was missing or malformed.
	ErrInvalidArgument = errors.New("featureId, voteType, and userId are required")

	// ErrInvalidVoteType means voteType was neither "up" nor "down".
	ErrInvalidVoteType = errors.New(`voteType must be "up" or "down"`)

	// ErrFeatureNotFound means the feature does not exist or is not active.
	ErrFeatureNotFound = errors.New("feature not found or not active")

	// ErrDuplicateVote means the user already voted the same way on the
	// feature. Uniqueness violations raised by the store collapse into
	// this error as well.
	ErrDuplicateVote = errors.New("user has already voted on this feature with the same vote type")

	// ErrVoteNotFound means there is no ledger record to retract.
	ErrVoteNotFound = errors.New("vote not found")
)

// BadRequest reports whether err is a caller mistake rather than a
// storage failure. Handlers map these to HTTP 400.
func BadRequest(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidVoteType) ||
		errors.Is(err, ErrFeatureNotFound) ||
		errors.Is(err, ErrDuplicateVote) ||
		errors.Is(err, ErrVoteNotFound)
}
