package tests

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/nspcc-dev/custody-contract/common"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	data, err := os.ReadFile("../VERSION")
	require.NoError(t, err)

	var major, minor, patch int
	_, err = fmt.Sscanf(strings.TrimSpace(string(data)), "v%d.%d.%d", &major, &minor, &patch)
	require.NoError(t, err)

	require.Equal(t, common.Version, major*1_000_000+minor*1_000+patch,
		"version from common package differs from the VERSION file")
}
