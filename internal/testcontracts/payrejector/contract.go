package payrejector

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
)

// OnNEP17Payment refuses any incoming payment.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	panic("payment rejected")
}

// TakeControl calls custody takeControl on behalf of this contract.
func TakeControl(custody, newHeir interop.Hash160) {
	contract.Call(custody, "takeControl", contract.All, newHeir)
}

// Withdraw calls custody withdraw on behalf of this contract.
func Withdraw(custody interop.Hash160, amount int) {
	contract.Call(custody, "withdraw", contract.All, amount)
}

func Verify() bool {
	return true
}
