/*
Package deploy provides deployment of the Custody contract to Neo blockchain.
*/
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/custody-contract/contracts"
	"github.com/nspcc-dev/custody-contract/rpc/custody"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for Custody deployment.
type Blockchain interface {
	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Deployer sends contract deployment transactions. It's implemented by
// management.Contract from NeoGo RPC client.
type Deployer interface {
	Deploy(nefFile *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

// Waiter awaits for the results of the sent transactions. It's implemented
// by actor.Actor from NeoGo RPC client.
type Waiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Invoker performs test invocations of the deployed contract. It's
// implemented by actor.Actor from NeoGo RPC client.
type Invoker = custody.Invoker

// Prm groups parameters of the Custody deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Neo blockchain to deploy contract to.
	Blockchain Blockchain

	// Sends deployment transaction signed by Sender.
	Deployer Deployer

	// Waits for deployment transaction to be accepted.
	Waiter Waiter

	// Reads the state of already deployed contract.
	Invoker Invoker

	// Account sending the deployment transaction. It becomes the owner of
	// the deployed custody.
	Sender util.Uint160

	// Compiled Custody contract.
	Contract contracts.Contract

	// Heir of the deployed custody.
	Heir util.Uint160
}

// ErrDeploymentFailed is returned when deployment transaction is accepted by
// the network but its execution fails.
var ErrDeploymentFailed = errors.New("deployment transaction failed")

// Deploy deploys Custody contract with the heir specified in the parameters
// and returns its address. Contract address depends on the sender, NEF and
// contract name only, so if the contract with this address is already
// deployed, Deploy returns its address without sending any transaction.
// Deploy honors the context until the deployment transaction is sent, then
// it waits for the transaction result.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	addr := state.CreateContractHash(prm.Sender, prm.Contract.NEF.Checksum, prm.Contract.Manifest.Name)
	l := prm.Logger.With(zap.String("contract", prm.Contract.Manifest.Name), zap.Stringer("address", addr))

	st, err := prm.Blockchain.GetContractStateByHash(addr)
	if err == nil && st != nil {
		l.Info("contract is already deployed, skip", zap.Int32("id", st.ID))

		heir, err := custody.NewReader(prm.Invoker, addr).Heir()
		if err != nil {
			l.Warn("failed to read heir of the deployed contract", zap.Error(err))
		} else if !heir.Equals(prm.Heir) {
			l.Warn("deployed contract has another heir",
				zap.Stringer("expected", prm.Heir), zap.Stringer("actual", heir))
		}

		return addr, nil
	}
	if err != nil && !isErrContractNotFound(err) {
		return addr, fmt.Errorf("get contract state by address: %w", err)
	}

	if prm.Heir.Equals(prm.Sender) {
		l.Warn("heir is the owner of the custody", zap.Stringer("heir", prm.Heir))
	}

	err = ctx.Err()
	if err != nil {
		return addr, fmt.Errorf("deployment aborted: %w", err)
	}

	l.Info("sending deployment transaction...", zap.Stringer("heir", prm.Heir))

	txHash, vub, err := prm.Deployer.Deploy(&prm.Contract.NEF, &prm.Contract.Manifest, []any{prm.Heir})
	if err != nil {
		return addr, fmt.Errorf("send deployment transaction: %w", err)
	}

	l.Debug("deployment transaction sent, waiting for it to be accepted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := prm.Waiter.Wait(txHash, vub, nil)
	if err != nil {
		return addr, fmt.Errorf("wait for deployment transaction %s: %w", txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return addr, fmt.Errorf("%w: tx %s, %s state, exception: %s",
			ErrDeploymentFailed, txHash.StringLE(), res.VMState, res.FaultException)
	}

	l.Info("contract successfully deployed", zap.Stringer("tx", txHash))

	return addr, nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
