package exec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/docs_sync/docsync/exec"
)

func TestEx_success(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(context.Background(), "", "echo", "hello")

	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestEx_with_dir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := exec.Ex(context.Background(), dir, "pwd")

	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestEx_failure(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex(context.Background(), "", "false")

	assert.ErrorContains(t, err, "executing command: false")
}

func TestEx_error_carries_output(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex(
		context.Background(), "",
		"sh", "-c", "echo first; echo 'fatal: bad ref' >&2; exit 3",
	)

	var execErr *exec.Error
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "sh -c echo first; echo 'fatal: bad ref' >&2; exit 3", execErr.Cmd)
	assert.Contains(t, execErr.Output, "first")
	assert.ErrorContains(t, err, "fatal: bad ref")
}

func TestEx_cancelled_context(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Ex(ctx, "", "sleep", "5")

	assert.Error(t, err)
}

func TestRun_stops_at_first_failure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	err := exec.Run(
		context.Background(),
		dir,
		[]string{"false"},
		[]string{"touch", "never"},
	)

	require.Error(t, err)
	assert.NoFileExists(t, dir+"/never")
}

func TestRun_skips_empty_commands(t *testing.T) {
	t.Parallel()

	err := exec.Run(
		context.Background(),
		"",
		nil,
		[]string{"true"},
	)

	assert.NoError(t, err)
}
