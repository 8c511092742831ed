package custody

import (
	"github.com/nspcc-dev/custody-contract/common"
	"github.com/nspcc-dev/custody-contract/contracts/custody/custodyconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Account is the authorization record of the custody.
type Account struct {
	// Account allowed to withdraw funds.
	Owner interop.Hash160
	// Account allowed to take control after owner expiration.
	Heir interop.Hash160
	// Timestamp (ms) of the last owner activity.
	LastActivity int
}

const accountKey = 'a'

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		heir interop.Hash160
	})

	checkHeir(args.heir)

	owner := runtime.GetScriptContainer().Sender
	if owner.Equals(args.heir) {
		runtime.Log("heir is the owner")
	}

	putAccount(storage.GetContext(), Account{
		Owner:        owner,
		Heir:         args.heir,
		LastActivity: runtime.GetTime(),
	})

	runtime.Log("custody contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the current owner.
func Update(nefFile, manifest []byte, data any) {
	acc := getAccount(storage.GetReadOnlyContext())
	common.CheckWitnessWithMessage(acc.Owner, custodyconst.ErrNotOwner)

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("custody contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Anyone can deposit any amount including zero, data is ignored. Deposits
// are not considered owner activity.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		panic(custodyconst.ErrOnlyGAS)
	}

	runtime.Notify(custodyconst.DepositEvent, from, amount)
}

// Withdraw transfers amount of GAS from the custody to the owner. It can be
// invoked only by the owner. Successful withdrawal, zero amount included,
// resets owner inactivity timer.
func Withdraw(amount int) {
	ctx := storage.GetContext()
	acc := getAccount(ctx)

	common.CheckWitnessWithMessage(acc.Owner, custodyconst.ErrNotOwner)

	if amount < 0 {
		panic(custodyconst.ErrNegativeAmount)
	}

	self := runtime.GetExecutingScriptHash()
	if amount > gas.BalanceOf(self) {
		panic(custodyconst.ErrInsufficientBalance)
	}

	if !gas.Transfer(self, acc.Owner, amount, nil) {
		panic(custodyconst.ErrTransferFailed)
	}

	acc.LastActivity = runtime.GetTime()
	putAccount(ctx, acc)

	runtime.Notify(custodyconst.WithdrawEvent, acc.Owner, amount)
}

// TakeControl makes heir the owner of the custody and sets newHeir as the
// next heir. It can be invoked only by the heir and only after
// InactivityPeriod since the last owner activity. Inactivity timer starts
// again for the new owner.
func TakeControl(newHeir interop.Hash160) {
	ctx := storage.GetContext()
	acc := getAccount(ctx)

	common.CheckWitnessWithMessage(acc.Heir, custodyconst.ErrNotHeir)

	now := runtime.GetTime()
	if now < acc.LastActivity+custodyconst.InactivityPeriod {
		panic(custodyconst.ErrOwnerNotExpired)
	}

	checkHeir(newHeir)

	prevOwner := acc.Owner

	acc.Owner = acc.Heir
	acc.Heir = newHeir
	acc.LastActivity = now
	putAccount(ctx, acc)

	if acc.Owner.Equals(newHeir) {
		runtime.Log("heir is the owner")
	}

	runtime.Notify(custodyconst.ControlTransferredEvent, prevOwner, acc.Owner, newHeir)
}

// Owner returns the account currently allowed to withdraw funds.
func Owner() interop.Hash160 {
	return getAccount(storage.GetReadOnlyContext()).Owner
}

// Heir returns the account allowed to take control after owner expiration.
func Heir() interop.Hash160 {
	return getAccount(storage.GetReadOnlyContext()).Heir
}

// LastActivity returns timestamp (ms) of the last owner activity.
func LastActivity() int {
	return getAccount(storage.GetReadOnlyContext()).LastActivity
}

// ExpiresAt returns timestamp (ms) starting from which the heir can take
// control.
func ExpiresAt() int {
	return LastActivity() + custodyconst.InactivityPeriod
}

// IsExpired checks whether the heir can take control at the current block
// time.
func IsExpired() bool {
	return runtime.GetTime() >= ExpiresAt()
}

// Balance returns amount of GAS held by the custody.
func Balance() int {
	return gas.BalanceOf(runtime.GetExecutingScriptHash())
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func checkHeir(heir interop.Hash160) {
	if len(heir) != interop.Hash160Len {
		panic(custodyconst.ErrInvalidHeir)
	}
}

func getAccount(ctx storage.Context) Account {
	data := storage.Get(ctx, []byte{accountKey})
	if data == nil {
		panic("custody is not initialized")
	}

	return std.Deserialize(data.([]byte)).(Account)
}

func putAccount(ctx storage.Context, acc Account) {
	common.SetSerialized(ctx, []byte{accountKey}, acc)
}
