package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/custody-contract/rpc/custody"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("1.5")
	require.NoError(t, err)
	require.Zero(t, v.Cmp(big.NewInt(150_000_000)))

	v, err = parseAmount("0")
	require.NoError(t, err)
	require.Zero(t, v.Sign())

	for _, s := range []string{"", "-1", "abc"} {
		_, err = parseAmount(s)
		require.Error(t, err, s)
	}
}

func TestParseHash160(t *testing.T) {
	h := util.Uint160{1, 2, 3}

	res, err := parseHash160(h.StringLE())
	require.NoError(t, err)
	require.Equal(t, h, res)

	res, err = parseHash160(address.Uint160ToString(h))
	require.NoError(t, err)
	require.Equal(t, h, res)

	_, err = parseHash160("not a hash")
	require.Error(t, err)
}

func TestContractAddress(t *testing.T) {
	_, err := contractAddress(config{})
	require.Error(t, err)

	h := util.Uint160{4, 5}
	res, err := contractAddress(config{Contract: address.Uint160ToString(h)})
	require.NoError(t, err)
	require.Equal(t, h, res)
}

func TestReadContractFlags(t *testing.T) {
	_, err := readContract("", "")
	require.Error(t, err)

	_, err = readContract("a", "b")
	require.Error(t, err)

	_, err = readContract(t.TempDir(), "")
	require.Error(t, err)

	dir := t.TempDir()

	_nef, err := nef.NewFile(make([]byte, 32))
	require.NoError(t, err)
	bNEF, err := _nef.Bytes()
	require.NoError(t, err)
	jManifest, err := json.Marshal(manifest.NewManifest("Custody"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "contract.nef"), bNEF, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), jManifest, 0o600))

	ctr, err := readContract(dir, "")
	require.NoError(t, err)
	require.Equal(t, _nef.Checksum, ctr.NEF.Checksum)
	require.Equal(t, "Custody", ctr.Manifest.Name)
}

func TestPrintStatus(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := custody.Status{
		Owner:        util.Uint160{1},
		Heir:         util.Uint160{2},
		LastActivity: last,
		Balance:      big.NewInt(250_000_000),
	}

	var buf bytes.Buffer
	printStatus(&buf, st, last.Add(time.Hour))

	out := buf.String()
	require.Contains(t, out, address.Uint160ToString(st.Owner))
	require.Contains(t, out, address.Uint160ToString(st.Heir))
	require.Contains(t, out, "2024-01-31T00:00:00Z")
	require.Contains(t, out, "2.5 GAS")
	require.Contains(t, out, "719h0m0s left")

	buf.Reset()
	printStatus(&buf, st, st.ExpiresAt())
	require.Contains(t, buf.String(), "heir can take control")
}

func TestAppMissingRPC(t *testing.T) {
	a := newApp()
	a.Writer = new(bytes.Buffer)
	a.ErrWriter = new(bytes.Buffer)

	err := a.Run([]string{"custody", "--contract", address.Uint160ToString(util.Uint160{1}), "status"})
	require.ErrorContains(t, err, "missing Neo RPC endpoint")
}
