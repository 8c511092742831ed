package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

// CheckWitnessWithMessage checks witness of the passed caller. It panics
// with the provided message on fail, so contracts can expose their own
// error kinds.
func CheckWitnessWithMessage(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
