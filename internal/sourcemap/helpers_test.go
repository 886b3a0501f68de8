package sourcemap

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/yousuf/mapindex/internal/host"
	"github.com/yousuf/mapindex/internal/testutils"
)

func newTestDecoder(t *testing.T, files map[string]string, opts Options) *Decoder {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return NewDecoder(host.New(fs), testutils.NewLogger(t), opts)
}

func decodeFiles(t *testing.T, files map[string]string, mapFile string) *SourceMap {
	t.Helper()
	sm, err := newTestDecoder(t, files, Options{}).Decode(mapFile)
	require.NoError(t, err)
	return sm
}

func decodeText(t *testing.T, text string) *SourceMap {
	t.Helper()
	return decodeFiles(t, map[string]string{"/app/out.js.map": text}, "/app/out.js.map")
}

func mustMapping(t *testing.T, sm *SourceMap, i int) *Mapping {
	t.Helper()
	m, ok := sm.Mapping(i)
	require.True(t, ok, "mapping %d", i)
	return m
}

func mustScope(t *testing.T, sm *SourceMap, i int) *Scope {
	t.Helper()
	s, ok := sm.Scope(i)
	require.True(t, ok, "scope %d", i)
	return s
}
