package malaria

import "github.com/pkg/errors"

// Message-format constants used by both production error paths and test
// assertions, in the teacher's style: one constant per error shape so a
// t.Errorf(Constant, want, got) call and a real error return can share
// the same wording.
const (
	InvalidFloatParameterError  = "invalid %s %f, %s"
	InvalidIntParameterError    = "invalid %s %d, %s"
	InvalidStringParameterError = "invalid %s %s, %s"

	UnequalFloatParameterError  = "expected %s %f, instead got %f"
	UnequalIntParameterError    = "expected %s %d, instead got %d"
	UnequalStringParameterError = "expected %s %s, instead got %s"
	UnexpectedErrorWhileError   = "encountered error while %s: %s"
	ExpectedErrorWhileError     = "expected an error while %s, instead got none"

	MissingConfigKeyError     = "missing required configuration key %q"
	InvalidConfigKeyError     = "configuration key %q has an invalid value: %s"
	UnrecognizedKeywordError  = "%s is not a recognized value for %s"
	UnknownAntibodyClassError = "unknown antibody class %d"
)

// HostDeathError reports that a host's RBC count dropped below the
// survivable threshold during an Infection update (spec §7, kind 2). It is
// an ordinary error value, not a panic: callers are expected to stop
// calling Intrahost.Update on a host once they observe this error, not
// have the process aborted for them.
type HostDeathError struct {
	HostAge float64
	RBCs    int64
}

func (e *HostDeathError) Error() string {
	return errors.Errorf("host died of anemia at age %.2f days (rbc_count=%d)", e.HostAge, e.RBCs).Error()
}

// InvariantViolationError reports an internal invariant failure (spec §7,
// kind 3): a computed quantity that the model guarantees to be
// non-negative came out negative. Parameter values can produce it (for
// example an MSP1MerozoiteKillFraction large enough that kill fraction times
// MSP antibody concentration exceeds 1, which NewParams does not reject); it
// is fatal rather than recoverable.
type InvariantViolationError struct {
	Where string
	Value float64
}

func (e *InvariantViolationError) Error() string {
	return errors.Errorf("invariant violated in %s: value %v is out of range", e.Where, e.Value).Error()
}
