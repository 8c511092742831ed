package custody

import (
	"fmt"
	"math/big"
	"time"

	"github.com/nspcc-dev/custody-contract/contracts/custody/custodyconst"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/emit"
	"github.com/nspcc-dev/neo-go/pkg/vm/opcode"
)

// InactivityPeriod is the period of owner inactivity after which the heir
// can take control.
const InactivityPeriod = custodyconst.InactivityPeriod * time.Millisecond

// Status is a snapshot of the custody state.
type Status struct {
	Owner        util.Uint160
	Heir         util.Uint160
	LastActivity time.Time
	// Balance of the custody in GAS fractions (8 decimals).
	Balance *big.Int
}

// ExpiresAt returns the moment starting from which the heir can take control.
func (s Status) ExpiresAt() time.Time {
	return s.LastActivity.Add(InactivityPeriod)
}

// Expired checks whether the heir can take control at the given moment.
func (s Status) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

// Remaining returns the time left until the heir can take control, zero if
// it's already possible.
func (s Status) Remaining(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt().Sub(now)
}

// ScriptRunner executes scripts in test mode. It's implemented by
// invoker.Invoker and actor.Actor.
type ScriptRunner interface {
	Run(script []byte) (*result.Invoke, error)
}

// statusMethods are the contract methods read by [ReadStatus] in the order
// of the resulting array.
var statusMethods = []string{"owner", "heir", "lastActivity", "balance"}

// ReadStatus reads the current state of the custody deployed at hash. All
// values are read by a single script, so they belong to the same block.
func ReadStatus(r ScriptRunner, hash util.Uint160) (Status, error) {
	var res Status

	b := smartcontract.NewBuilder()
	// PACK takes the topmost item first, so methods are called backwards.
	for i := len(statusMethods) - 1; i >= 0; i-- {
		b.InvokeMethod(hash, statusMethods[i])
	}

	script, err := b.Script()
	if err != nil {
		return res, fmt.Errorf("build status script: %w", err)
	}

	w := io.NewBufBinWriter()
	emit.Int(w.BinWriter, int64(len(statusMethods)))
	emit.Opcodes(w.BinWriter, opcode.PACK)
	script = append(script, w.Bytes()...)

	items, err := unwrap.Array(r.Run(script))
	if err != nil {
		return res, fmt.Errorf("read status: %w", err)
	}
	if len(items) != len(statusMethods) {
		return res, fmt.Errorf("wrong number of status items: %d", len(items))
	}

	res.Owner, err = itemToUint160(items[0])
	if err != nil {
		return res, fmt.Errorf("decode owner: %w", err)
	}

	res.Heir, err = itemToUint160(items[1])
	if err != nil {
		return res, fmt.Errorf("decode heir: %w", err)
	}

	last, err := items[2].TryInteger()
	if err != nil {
		return res, fmt.Errorf("decode last activity: %w", err)
	}
	if !last.IsInt64() {
		return res, fmt.Errorf("last activity timestamp overflows int64: %s", last)
	}
	res.LastActivity = time.UnixMilli(last.Int64())

	res.Balance, err = items[3].TryInteger()
	if err != nil {
		return res, fmt.Errorf("decode balance: %w", err)
	}

	return res, nil
}
