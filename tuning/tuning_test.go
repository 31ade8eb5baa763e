package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected Params
		isErr    bool
	}{
		{name: "empty", input: "", expected: Default()},
		{name: "full", input: "mutex_spin: 10\nspin_yield: 0\nstats: false\n", expected: Params{MutexSpin: 10, SpinYield: 0, Stats: false}},
		{name: "partial", input: "mutex_spin: 7\n", expected: Params{MutexSpin: 7, SpinYield: 64, Stats: true}},
		{name: "negative spin", input: "mutex_spin: -1\n", isErr: true},
		{name: "negative yield", input: "spin_yield: -5\n", isErr: true},
		{name: "unknown key", input: "spin: 1\n", isErr: true},
		{name: "garbage", input: "mutex_spin: [1, 2\n", isErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := Parse([]byte(tc.input))
			if tc.isErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestParseInvalidWrapsSentinel(t *testing.T) {
	_, err := Parse([]byte("mutex_spin: -3\n"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spin_yield: 3\n"), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, p.SpinYield)
	require.Equal(t, Default().MutexSpin, p.MutexSpin)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSet(t *testing.T) {
	prev, err := Set(Params{MutexSpin: 1, SpinYield: 2, Stats: true})
	require.NoError(t, err)
	defer func() {
		_, err := Set(prev)
		require.NoError(t, err)
	}()

	require.Equal(t, Params{MutexSpin: 1, SpinYield: 2, Stats: true}, Get())

	_, err = Set(Params{MutexSpin: -1})
	require.ErrorIs(t, err, ErrInvalid)
	require.Equal(t, 1, Get().MutexSpin)
}
