package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/nspcc-dev/custody-contract/contracts"
	"github.com/nspcc-dev/custody-contract/deploy"
	"github.com/nspcc-dev/custody-contract/rpc/custody"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

const gasDecimals = 8

const (
	configFlag   = "config"
	rpcFlag      = "rpc"
	walletFlag   = "wallet"
	addressFlag  = "address"
	contractFlag = "contract"
	timeoutFlag  = "timeout"
	logLevelFlag = "log-level"

	heirFlag      = "heir"
	newHeirFlag   = "new-heir"
	amountFlag    = "amount"
	artifactsFlag = "artifacts"
	sourceFlag    = "source"
)

// app holds state shared by the commands. It's filled before any command
// runs.
type app struct {
	cfg config
	log *zap.Logger
}

func newApp() *cli.App {
	var a app

	res := cli.NewApp()
	res.Name = "custody"
	res.Usage = "manage GAS custody contract with inheritance"
	res.Flags = []cli.Flag{
		cli.StringFlag{Name: configFlag, Usage: "path to YAML configuration file"},
		cli.StringFlag{Name: rpcFlag, Usage: "Neo RPC server endpoint"},
		cli.StringFlag{Name: walletFlag, Usage: "path to NEP-6 wallet"},
		cli.StringFlag{Name: addressFlag, Usage: "wallet account to sign transactions with (default account if empty)"},
		cli.StringFlag{Name: contractFlag, Usage: "custody contract address or script hash"},
		cli.DurationFlag{Name: timeoutFlag, Usage: "timeout of RPC requests and deployment", Value: defaultTimeout},
		cli.StringFlag{Name: logLevelFlag, Usage: "logging level", Value: defaultLogLevel},
	}
	res.Before = a.before
	res.After = func(*cli.Context) error {
		if a.log != nil {
			_ = a.log.Sync()
		}
		return nil
	}
	res.Commands = []cli.Command{
		{
			Name:  "deploy",
			Usage: "deploy custody owned by the wallet account",
			Flags: []cli.Flag{
				cli.StringFlag{Name: heirFlag, Usage: "heir address"},
				cli.StringFlag{Name: artifactsFlag, Usage: "directory with compiled contract.nef and manifest.json"},
				cli.StringFlag{Name: sourceFlag, Usage: "directory with contract sources and config.yml to compile"},
			},
			Action: a.deploy,
		},
		{
			Name:   "deposit",
			Usage:  "transfer GAS from the wallet account to the custody",
			Flags:  []cli.Flag{cli.StringFlag{Name: amountFlag, Usage: "amount of GAS, e.g. 1.5"}},
			Action: a.deposit,
		},
		{
			Name:   "withdraw",
			Usage:  "withdraw GAS from the custody to its owner",
			Flags:  []cli.Flag{cli.StringFlag{Name: amountFlag, Usage: "amount of GAS, e.g. 1.5"}},
			Action: a.withdraw,
		},
		{
			Name:   "take-control",
			Usage:  "become the owner of the custody after owner inactivity period",
			Flags:  []cli.Flag{cli.StringFlag{Name: newHeirFlag, Usage: "address of the next heir"}},
			Action: a.takeControl,
		},
		{
			Name:   "update",
			Usage:  "update custody contract code",
			Flags:  []cli.Flag{cli.StringFlag{Name: artifactsFlag, Usage: "directory with compiled contract.nef and manifest.json"}},
			Action: a.update,
		},
		{
			Name:   "status",
			Usage:  "print custody state",
			Action: a.status,
		},
	}

	return res
}

func (a *app) before(c *cli.Context) error {
	a.cfg = defaultConfig()

	if p := c.String(configFlag); p != "" {
		var err error
		a.cfg, err = loadConfig(p)
		if err != nil {
			return err
		}
	}

	a.cfg.applyFlags(c)

	err := a.cfg.validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.log, err = newLogger(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	return nil
}

func (a *app) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.cfg.Timeout)
}

func (a *app) deploy(c *cli.Context) error {
	heir, err := requiredHash160(c, heirFlag)
	if err != nil {
		return err
	}

	ctr, err := readContract(c.String(artifactsFlag), c.String(sourceFlag))
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	rpc, act, err := newActor(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rpc.Close()

	addr, err := deploy.Deploy(ctx, deploy.Prm{
		Logger:     a.log,
		Blockchain: rpc,
		Deployer:   management.New(act),
		Waiter:     act,
		Invoker:    act,
		Sender:     act.Sender(),
		Contract:   ctr,
		Heir:       heir,
	})
	if err != nil {
		return custody.ParseError(err)
	}

	fmt.Fprintf(c.App.Writer, "Contract: %s (%s)\n", address.Uint160ToString(addr), addr.StringLE())

	return nil
}

func (a *app) deposit(c *cli.Context) error {
	amount, err := parseAmount(c.String(amountFlag))
	if err != nil {
		return err
	}

	h, err := contractAddress(a.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	rpc, act, err := newActor(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rpc.Close()

	txHash, vub, err := gas.New(act).Transfer(act.Sender(), h, amount, nil)
	res, err := await(act, txHash, vub, err)
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	a.log.Info("deposit accepted", zap.Stringer("tx", res.Container), zap.String("amount", fixedn.ToString(amount, gasDecimals)))

	return nil
}

func (a *app) withdraw(c *cli.Context) error {
	amount, err := parseAmount(c.String(amountFlag))
	if err != nil {
		return err
	}

	h, err := contractAddress(a.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	rpc, act, err := newActor(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rpc.Close()

	txHash, vub, err := custody.New(act, h).Withdraw(amount)
	res, err := await(act, txHash, vub, err)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}

	a.log.Info("withdrawal accepted", zap.Stringer("tx", res.Container), zap.String("amount", fixedn.ToString(amount, gasDecimals)))

	return nil
}

func (a *app) takeControl(c *cli.Context) error {
	newHeir, err := requiredHash160(c, newHeirFlag)
	if err != nil {
		return err
	}

	h, err := contractAddress(a.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	rpc, act, err := newActor(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rpc.Close()

	txHash, vub, err := custody.New(act, h).TakeControl(newHeir)
	res, err := await(act, txHash, vub, err)
	if err != nil {
		return fmt.Errorf("take control: %w", err)
	}

	evs, err := custody.ControlTransferredEventsFromApplicationLog(toAppLog(res))
	if err != nil || len(evs) == 0 {
		a.log.Warn("control transferred but the event can't be decoded", zap.Stringer("tx", res.Container), zap.Error(err))
		return nil
	}

	a.log.Info("control transferred",
		zap.Stringer("tx", res.Container),
		zap.String("previous owner", address.Uint160ToString(evs[0].PreviousOwner)),
		zap.String("new owner", address.Uint160ToString(evs[0].NewOwner)),
		zap.String("new heir", address.Uint160ToString(evs[0].NewHeir)))

	return nil
}

func (a *app) update(c *cli.Context) error {
	dir := c.String(artifactsFlag)
	if dir == "" {
		return fmt.Errorf("missing --%s", artifactsFlag)
	}

	ctr, err := contracts.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read contract artifacts: %w", err)
	}

	nefBytes, err := ctr.NEF.Bytes()
	if err != nil {
		return fmt.Errorf("encode NEF: %w", err)
	}

	manifBytes, err := json.Marshal(&ctr.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	h, err := contractAddress(a.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	rpc, act, err := newActor(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rpc.Close()

	txHash, vub, err := custody.New(act, h).Update(nefBytes, manifBytes, nil)
	res, err := await(act, txHash, vub, err)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	a.log.Info("contract updated", zap.Stringer("tx", res.Container))

	return nil
}

func (a *app) status(c *cli.Context) error {
	h, err := contractAddress(a.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	rpc, err := dial(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rpc.Close()

	st, err := custody.ReadStatus(invoker.New(rpc, nil), h)
	if err != nil {
		return fmt.Errorf("read custody status: %w", err)
	}

	printStatus(c.App.Writer, st, time.Now())

	return nil
}

func printStatus(w io.Writer, st custody.Status, now time.Time) {
	fmt.Fprintf(w, "Owner:         %s\n", address.Uint160ToString(st.Owner))
	fmt.Fprintf(w, "Heir:          %s\n", address.Uint160ToString(st.Heir))
	fmt.Fprintf(w, "Last activity: %s\n", st.LastActivity.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Expires at:    %s\n", st.ExpiresAt().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Balance:       %s GAS\n", fixedn.ToString(st.Balance, gasDecimals))
	if st.Expired(now) {
		fmt.Fprintln(w, "Expired:       yes, heir can take control")
	} else {
		fmt.Fprintf(w, "Expired:       no, %s left\n", st.Remaining(now).Truncate(time.Second))
	}
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("missing --%s", amountFlag)
	}

	amount, err := fixedn.FromString(s, gasDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}

	return amount, nil
}

func readContract(artifacts, source string) (contracts.Contract, error) {
	switch {
	case artifacts != "" && source != "":
		return contracts.Contract{}, fmt.Errorf("--%s and --%s are mutually exclusive", artifactsFlag, sourceFlag)
	case artifacts != "":
		ctr, err := contracts.ReadDir(artifacts)
		if err != nil {
			return ctr, fmt.Errorf("read contract artifacts: %w", err)
		}
		return ctr, nil
	case source != "":
		ctr, err := contracts.Compile(source)
		if err != nil {
			return ctr, fmt.Errorf("compile contract: %w", err)
		}
		return ctr, nil
	default:
		return contracts.Contract{}, errors.New("either --artifacts or --source must be set")
	}
}

func requiredHash160(c *cli.Context, name string) (h util.Uint160, err error) {
	s := c.String(name)
	if s == "" {
		return h, fmt.Errorf("missing --%s", name)
	}

	h, err = parseHash160(s)
	if err != nil {
		return h, fmt.Errorf("invalid --%s: %w", name, err)
	}

	return h, nil
}
