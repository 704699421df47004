package pidfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadrieril/rustorio/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.pid")
	pf := pidfile.New(path)

	require.NoError(t, pf.Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))

	require.NoError(t, pf.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Releasing twice is fine.
	assert.NoError(t, pf.Release())
}

func TestPIDFile_RejectsLiveOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.pid")
	// The current process stands in for the live owner.
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644))

	err := pidfile.New(path).Acquire()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already active"))
}

func TestPIDFile_ReclaimsGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))

	pf := pidfile.New(path)
	require.NoError(t, pf.Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))
}
