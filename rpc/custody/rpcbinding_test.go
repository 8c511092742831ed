package custody

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/nspcc-dev/custody-contract/contracts/custody/custodyconst"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

type testInvoker struct {
	results map[string]stackitem.Item
	err     error
}

func (x *testInvoker) Call(_ util.Uint160, operation string, _ ...any) (*result.Invoke, error) {
	if x.err != nil {
		return nil, x.err
	}

	item, ok := x.results[operation]
	if !ok {
		return &result.Invoke{
			State:          vmstate.Fault.String(),
			FaultException: "method not found: " + operation,
		}, nil
	}

	return &result.Invoke{
		State: vmstate.Halt.String(),
		Stack: []stackitem.Item{item},
	}, nil
}

type sentCall struct {
	contract util.Uint160
	method   string
	params   []any
}

type testActor struct {
	testInvoker

	sent []sentCall
}

func (x *testActor) MakeCall(util.Uint160, string, ...any) (*transaction.Transaction, error) {
	panic("unexpected call")
}

func (x *testActor) MakeRun([]byte) (*transaction.Transaction, error) {
	panic("unexpected call")
}

func (x *testActor) MakeUnsignedCall(util.Uint160, string, []transaction.Attribute, ...any) (*transaction.Transaction, error) {
	panic("unexpected call")
}

func (x *testActor) MakeUnsignedRun([]byte, []transaction.Attribute) (*transaction.Transaction, error) {
	panic("unexpected call")
}

func (x *testActor) SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	x.sent = append(x.sent, sentCall{contract, method, params})
	return util.Uint256{1}, 100, x.err
}

func (x *testActor) SendRun([]byte) (util.Uint256, uint32, error) {
	panic("unexpected call")
}

var (
	testContract = util.Uint160{0xc0}
	testOwner    = util.Uint160{1}
	testHeir     = util.Uint160{2}
)

func TestContractReader(t *testing.T) {
	const last = int64(1_700_000_000_000)

	inv := &testInvoker{results: map[string]stackitem.Item{
		"owner":        stackitem.Make(testOwner.BytesBE()),
		"heir":         stackitem.Make(testHeir.BytesBE()),
		"lastActivity": stackitem.Make(last),
		"expiresAt":    stackitem.Make(last + custodyconst.InactivityPeriod),
		"isExpired":    stackitem.Make(true),
		"balance":      stackitem.Make(42),
		"version":      stackitem.Make(1000),
	}}
	r := NewReader(inv, testContract)

	owner, err := r.Owner()
	require.NoError(t, err)
	require.Equal(t, testOwner, owner)

	heir, err := r.Heir()
	require.NoError(t, err)
	require.Equal(t, testHeir, heir)

	expiresAt, err := r.ExpiresAt()
	require.NoError(t, err)
	require.EqualValues(t, last+custodyconst.InactivityPeriod, expiresAt.Int64())

	expired, err := r.IsExpired()
	require.NoError(t, err)
	require.True(t, expired)

	t.Run("fault", func(t *testing.T) {
		delete(inv.results, "balance")

		_, err := r.Balance()
		require.Error(t, err)
	})

	t.Run("transport error", func(t *testing.T) {
		inv.err = errors.New("connection refused")
		t.Cleanup(func() { inv.err = nil })

		_, err := r.Owner()
		require.ErrorIs(t, err, inv.err)
	})

	t.Run("invalid owner", func(t *testing.T) {
		inv.results["owner"] = stackitem.Make([]byte{1, 2, 3})

		_, err := r.Owner()
		require.Error(t, err)
	})
}

func TestContract(t *testing.T) {
	act := new(testActor)
	c := New(act, testContract)

	_, vub, err := c.Withdraw(big.NewInt(10))
	require.NoError(t, err)
	require.EqualValues(t, 100, vub)

	_, _, err = c.TakeControl(testHeir)
	require.NoError(t, err)

	require.Equal(t, []sentCall{
		{testContract, "withdraw", []any{big.NewInt(10)}},
		{testContract, "takeControl", []any{testHeir}},
	}, act.sent)
}

type testRunner struct {
	res    *result.Invoke
	script []byte
}

func (x *testRunner) Run(script []byte) (*result.Invoke, error) {
	x.script = script
	return x.res, nil
}

func TestReadStatus(t *testing.T) {
	const last = 1_700_000_000_000

	r := &testRunner{res: &result.Invoke{
		State: vmstate.Halt.String(),
		Stack: []stackitem.Item{stackitem.Make([]stackitem.Item{
			stackitem.Make(testOwner.BytesBE()),
			stackitem.Make(testHeir.BytesBE()),
			stackitem.Make(last),
			stackitem.Make(42),
		})},
	}}

	st, err := ReadStatus(r, testContract)
	require.NoError(t, err)
	require.NotEmpty(t, r.script)
	require.Equal(t, testOwner, st.Owner)
	require.Equal(t, testHeir, st.Heir)
	require.Equal(t, time.UnixMilli(last), st.LastActivity)
	require.Equal(t, time.UnixMilli(last+custodyconst.InactivityPeriod), st.ExpiresAt())
	require.EqualValues(t, 42, st.Balance.Int64())

	t.Run("fault", func(t *testing.T) {
		r := &testRunner{res: &result.Invoke{
			State:          vmstate.Fault.String(),
			FaultException: "custody is not initialized",
		}}

		_, err := ReadStatus(r, testContract)
		require.ErrorContains(t, err, "custody is not initialized")
	})

	t.Run("wrong length", func(t *testing.T) {
		r := &testRunner{res: &result.Invoke{
			State: vmstate.Halt.String(),
			Stack: []stackitem.Item{stackitem.Make([]stackitem.Item{stackitem.Make(1)})},
		}}

		_, err := ReadStatus(r, testContract)
		require.Error(t, err)
	})

	t.Run("invalid owner", func(t *testing.T) {
		r := &testRunner{res: &result.Invoke{
			State: vmstate.Halt.String(),
			Stack: []stackitem.Item{stackitem.Make([]stackitem.Item{
				stackitem.Make([]byte{1, 2, 3}),
				stackitem.Make(testHeir.BytesBE()),
				stackitem.Make(last),
				stackitem.Make(42),
			})},
		}}

		_, err := ReadStatus(r, testContract)
		require.ErrorContains(t, err, "decode owner")
	})
}

func TestStatus(t *testing.T) {
	last := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	st := Status{LastActivity: last}

	expiresAt := last.Add(30 * 24 * time.Hour)
	require.Equal(t, expiresAt, st.ExpiresAt())

	for _, tc := range []struct {
		now       time.Time
		expired   bool
		remaining time.Duration
	}{
		{now: last, expired: false, remaining: 30 * 24 * time.Hour},
		{now: expiresAt.Add(-time.Second), expired: false, remaining: time.Second},
		{now: expiresAt, expired: true, remaining: 0},
		{now: expiresAt.Add(time.Second), expired: true, remaining: 0},
	} {
		require.Equal(t, tc.expired, st.Expired(tc.now), tc.now)
		require.Equal(t, tc.remaining, st.Remaining(tc.now), tc.now)
	}
}

func TestEventsFromApplicationLog(t *testing.T) {
	hash := func(u util.Uint160) stackitem.Item { return stackitem.Make(u.BytesBE()) }
	newHeir := util.Uint160{3}

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			VMState: vmstate.Halt,
			Events: []state.NotificationEvent{
				{ScriptHash: testContract, Name: "Deposit", Item: stackitem.NewArray([]stackitem.Item{
					hash(testOwner), stackitem.Make(100),
				})},
				{ScriptHash: testContract, Name: "Withdraw", Item: stackitem.NewArray([]stackitem.Item{
					hash(testOwner), stackitem.Make(40),
				})},
				{ScriptHash: testContract, Name: "ControlTransferred", Item: stackitem.NewArray([]stackitem.Item{
					hash(testOwner), hash(testHeir), hash(newHeir),
				})},
			},
		}},
	}

	deposits, err := DepositEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	require.Equal(t, testOwner, deposits[0].From)
	require.EqualValues(t, 100, deposits[0].Amount.Int64())

	withdrawals, err := WithdrawEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	require.Equal(t, testOwner, withdrawals[0].Owner)
	require.EqualValues(t, 40, withdrawals[0].Amount.Int64())

	transfers, err := ControlTransferredEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*ControlTransferredEvent{{
		PreviousOwner: testOwner,
		NewOwner:      testHeir,
		NewHeir:       newHeir,
	}}, transfers)

	_, err = DepositEventsFromApplicationLog(nil)
	require.Error(t, err)

	log.Executions[0].Events[0].Item = stackitem.NewArray([]stackitem.Item{hash(testOwner)})
	_, err = DepositEventsFromApplicationLog(log)
	require.Error(t, err)
}
