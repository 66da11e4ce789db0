package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/accel/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { require.NoError(t, config.Set(config.Default())) })

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "accel "+version+"\n", out)
}

func TestDevices(t *testing.T) {
	out, err := execute(t, "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "PltfCpu")
	assert.Contains(t, out, "PltfGpuSim")
	assert.Contains(t, out, "AccCpuThreads<1,int>")
	assert.Contains(t, out, "AccGpuSim<1,int> (non-blocking queue)")
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "--acc", "gpusim", "--kernel", "histogram", "--n", "4096")
	require.NoError(t, err)
	assert.Contains(t, out, "AccGpuSim<1,int>")
	assert.Contains(t, out, "4096 samples in 16 bins")
}

func TestRun_UnknownKernel(t *testing.T) {
	_, err := execute(t, "run", "--kernel", "fft")
	assert.ErrorContains(t, err, "unknown name")
}

func TestBench_StopsAtVariantLimit(t *testing.T) {
	out, err := execute(t, "bench", "--acc", "serial", "--n", "256", "--reps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "block threads     1")
	assert.NotContains(t, out, "block threads     2")
}

func TestBench_Plot(t *testing.T) {
	out, err := execute(t, "bench", "--acc", "blocks", "--kernel", "reduce", "--n", "1024", "--reps", "1", "--max-block-threads", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "block threads     1")

	out, err = execute(t, "bench", "--acc", "threads", "--n", "1024", "--reps", "1", "--max-block-threads", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "microseconds per launch")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lock_slots: 64\nlog:\n  level: debug\n"), 0o600))

	_, err := execute(t, "--config", path, "version")
	require.NoError(t, err)
	assert.Equal(t, 64, config.Current().LockSlots)
	assert.Equal(t, "debug", config.Current().Log.Level)
}

func TestConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lock_slots: 3\n"), 0o600))

	_, err := execute(t, "--config", path, "version")
	assert.ErrorIs(t, err, config.ErrInvalid)
}
