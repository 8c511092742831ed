package custody

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/custody-contract/contracts/custody/custodyconst"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

// Errors thrown by the contract. Use [ParseError] or [FaultError] to match
// them with errors.Is.
var (
	ErrNotOwner            = errors.New(custodyconst.ErrNotOwner)
	ErrInsufficientBalance = errors.New(custodyconst.ErrInsufficientBalance)
	ErrNotHeir             = errors.New(custodyconst.ErrNotHeir)
	ErrOwnerNotExpired     = errors.New(custodyconst.ErrOwnerNotExpired)
	ErrInvalidHeir         = errors.New(custodyconst.ErrInvalidHeir)
	ErrNegativeAmount      = errors.New(custodyconst.ErrNegativeAmount)
	ErrTransferFailed      = errors.New(custodyconst.ErrTransferFailed)
	ErrOnlyGAS             = errors.New(custodyconst.ErrOnlyGAS)
)

var contractErrors = []error{
	ErrNotOwner,
	ErrInsufficientBalance,
	ErrNotHeir,
	ErrOwnerNotExpired,
	ErrInvalidHeir,
	ErrNegativeAmount,
	ErrTransferFailed,
	ErrOnlyGAS,
}

// ParseError wraps err into the matching contract error if err carries
// contract exception text, e.g. after failed test invocation done by actor.
// Other errors are returned as is.
func ParseError(err error) error {
	if err == nil {
		return nil
	}

	if e := matchException(err.Error()); e != nil {
		return fmt.Errorf("%w: %w", e, err)
	}

	return err
}

// FaultError returns an error describing unsuccessful execution of the
// transaction or nil if it has been HALTed. Known contract exceptions are
// matched with contract errors.
func FaultError(res *state.AppExecResult) error {
	if res.VMState == vmstate.Halt {
		return nil
	}

	err := fmt.Errorf("transaction %s failed with %s state: %s", res.Container.StringLE(), res.VMState, res.FaultException)
	if e := matchException(res.FaultException); e != nil {
		return fmt.Errorf("%w: %w", e, err)
	}

	return err
}

func matchException(exc string) error {
	for _, e := range contractErrors {
		if strings.Contains(exc, e.Error()) {
			return e
		}
	}
	return nil
}
