package gpu

import (
	_ "embed"
	"fmt"
	"sort"
)

// Built-in program names.
const (
	ProgramStandardVertex     = "standard_vertex"
	ProgramStandardFragment   = "standard_fragment"
	ProgramUVColoredFragment  = "uv_colored_fragment"
	ProgramSkyboxVertex       = "skybox_vertex"
	ProgramSkyboxFragment     = "skybox_fragment"
	programVertexEntryPoint   = "vs_main"
	programFragmentEntryPoint = "fs_main"
)

//go:embed assets/standard_vertex.wgsl
var standardVertexSource string

//go:embed assets/standard_fragment.wgsl
var standardFragmentSource string

//go:embed assets/uv_colored_fragment.wgsl
var uvColoredFragmentSource string

//go:embed assets/skybox_vertex.wgsl
var skyboxVertexSource string

//go:embed assets/skybox_fragment.wgsl
var skyboxFragmentSource string

// programs maps program names to WGSL sources. Vertex programs export vs_main and
// fragment programs export fs_main.
var programs = map[string]string{
	ProgramStandardVertex:    standardVertexSource,
	ProgramStandardFragment:  standardFragmentSource,
	ProgramUVColoredFragment: uvColoredFragmentSource,
	ProgramSkyboxVertex:      skyboxVertexSource,
	ProgramSkyboxFragment:    skyboxFragmentSource,
}

// RegisterProgram adds or replaces a named WGSL program. Registration must happen before
// any pipeline using the name is built; pipelines already cached keep the old source.
//
// Parameters:
//   - name: the program name referenced by PipelineKey
//   - source: the WGSL source exporting vs_main or fs_main
//
// Returns:
//   - error: error if name or source is empty
func RegisterProgram(name, source string) error {
	if name == "" || source == "" {
		return fmt.Errorf("program name and source must be non-empty")
	}
	programs[name] = source
	return nil
}

// ProgramSource returns the WGSL source registered under name.
//
// Parameters:
//   - name: the program name
//
// Returns:
//   - string: the WGSL source
//   - bool: false if no program is registered under name
func ProgramSource(name string) (string, bool) {
	src, ok := programs[name]
	return src, ok
}

// Programs returns the sorted names of every registered program.
func Programs() []string {
	names := make([]string, 0, len(programs))
	for name := range programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
