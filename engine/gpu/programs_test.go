package gpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProgramsExportEntryPoints(t *testing.T) {
	for _, name := range []string{ProgramStandardVertex, ProgramSkyboxVertex} {
		src, ok := ProgramSource(name)
		require.True(t, ok, name)
		assert.True(t, strings.Contains(src, "fn "+programVertexEntryPoint), name)
	}
	for _, name := range []string{ProgramStandardFragment, ProgramUVColoredFragment, ProgramSkyboxFragment} {
		src, ok := ProgramSource(name)
		require.True(t, ok, name)
		assert.True(t, strings.Contains(src, "fn "+programFragmentEntryPoint), name)
	}
}

func TestRegisterProgram(t *testing.T) {
	assert.Error(t, RegisterProgram("", "x"))

	require.NoError(t, RegisterProgram("test_fragment", "@fragment fn fs_main() {}"))
	t.Cleanup(func() { delete(programs, "test_fragment") })

	_, ok := ProgramSource("test_fragment")
	assert.True(t, ok)
	assert.Contains(t, Programs(), "test_fragment")
}
