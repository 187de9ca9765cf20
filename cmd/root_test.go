// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/backend"
	"github.com/xkilldash9x/chakram-cli/internal/config"
	"github.com/xkilldash9x/chakram-cli/internal/input"
)

// TestRootCmd_VersionFlag tests if the --version flag works correctly.
func TestRootCmd_VersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})

	err := rootCmd.ExecuteContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Version, strings.TrimSpace(out.String()))
}

// TestBuildController wires the whole pipeline from default configuration.
func TestBuildController(t *testing.T) {
	cfg := config.NewDefaultConfig()
	src := input.NewSynthetic(1)
	defer src.Close()

	ctrl, err := buildController(cfg, src, backend.NewMock(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, ctrl)

	snap := ctrl.Snapshot()
	assert.False(t, snap.AltMode.Active)
}
