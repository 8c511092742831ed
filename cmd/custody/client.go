package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/custody-contract/rpc/custody"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"golang.org/x/term"
)

// passwordEnv names environment variable with the wallet password. If it's
// unset, the password is requested from the terminal.
const passwordEnv = "CUSTODY_WALLET_PASSWORD"

var errNoTerminal = errors.New("wallet password is not provided and stdin is not a terminal")

// dial opens connection to the Neo RPC server.
func dial(ctx context.Context, cfg config) (*rpcclient.Client, error) {
	if cfg.RPC == "" {
		return nil, errors.New("missing Neo RPC endpoint")
	}

	c, err := rpcclient.New(ctx, cfg.RPC, rpcclient.Options{
		DialTimeout:    cfg.Timeout,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init RPC client: %w", err)
	}

	return c, nil
}

// parseHash160 accepts both Neo address and LE hex string.
func parseHash160(s string) (util.Uint160, error) {
	if h, err := util.Uint160DecodeStringLE(s); err == nil {
		return h, nil
	}

	h, err := address.StringToUint160(s)
	if err != nil {
		return h, fmt.Errorf("%q is neither an address nor a script hash: %w", s, err)
	}

	return h, nil
}

func contractAddress(cfg config) (util.Uint160, error) {
	if cfg.Contract == "" {
		return util.Uint160{}, errors.New("missing custody contract address")
	}

	h, err := parseHash160(cfg.Contract)
	if err != nil {
		return h, fmt.Errorf("invalid contract: %w", err)
	}

	return h, nil
}

// openAccount reads the wallet and decrypts the configured account or the
// default one if address is not set.
func openAccount(cfg config) (*wallet.Account, error) {
	if cfg.Wallet == "" {
		return nil, errors.New("missing wallet")
	}

	w, err := wallet.NewWalletFromFile(cfg.Wallet)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var h util.Uint160
	if cfg.Address != "" {
		h, err = parseHash160(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid account: %w", err)
		}
	} else {
		h = w.GetChangeAddress()
	}

	acc := w.GetAccount(h)
	if acc == nil {
		return nil, fmt.Errorf("account %s is missing in the wallet", address.Uint160ToString(h))
	}

	pass, err := readPassword(acc.Address)
	if err != nil {
		return nil, err
	}

	err = acc.Decrypt(pass, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

func readPassword(addr string) (string, error) {
	if pass, ok := os.LookupEnv(passwordEnv); ok {
		return pass, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoTerminal
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", addr)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return string(pass), nil
}

// newActor dials RPC server and creates actor signing transactions by the
// configured wallet account.
func newActor(ctx context.Context, cfg config) (*rpcclient.Client, *actor.Actor, error) {
	acc, err := openAccount(cfg)
	if err != nil {
		return nil, nil, err
	}

	c, err := dial(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	act, err := actor.NewSimple(c, acc)
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("init actor: %w", err)
	}

	return c, act, nil
}

// await waits for the transaction and classifies its failure.
func await(act *actor.Actor, txHash util.Uint256, vub uint32, err error) (*state.AppExecResult, error) {
	if err != nil {
		return nil, custody.ParseError(err)
	}

	res, err := act.Wait(txHash, vub, nil)
	if err != nil {
		return nil, fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), err)
	}

	return res, custody.FaultError(res)
}

func toAppLog(res *state.AppExecResult) *result.ApplicationLog {
	return &result.ApplicationLog{
		Container:     res.Container,
		IsTransaction: true,
		Executions:    []state.Execution{res.Execution},
	}
}
