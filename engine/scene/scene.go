// Package scene diffs each update tick's draw commands against the previous frame by id,
// carrying persistent storage forward for ids that survive and releasing the rest.
package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/command"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/library"
)

// Pair is one command of the current frame with the storage serving its id.
type Pair struct {
	Command command.Command
	Storage command.Storage
}

// Scene holds the current frame's ordered command/storage pairs.
// A Scene is not safe for concurrent use.
type Scene interface {
	// SetContent flattens node and makes its commands current. Storage is matched by id
	// only: a surviving id keeps the same storage instance, a new id (or an id whose kind
	// changed) gets a fresh one, and storage of vanished ids is released.
	// On error the previous pairs stay current, and retained storages are restored to the
	// state they had before the call.
	//
	// Parameters:
	//   - node: the content root; nil means no commands
	//   - surfaceAspect: width / height of the surface
	//
	// Returns:
	//   - error: *DuplicateIDError before any build, or *BuildError
	SetContent(node Node, surfaceAspect float32) error

	// Update resolves the animated attributes of every pair at presentation time t.
	//
	// Parameters:
	//   - t: presentation time in seconds
	Update(t float64)

	// Pairs returns the current pairs in draw order. The slice must not be modified.
	//
	// Returns:
	//   - []Pair: the current pairs
	Pairs() []Pair

	// Storage returns the storage currently serving id.
	//
	// Parameters:
	//   - id: the command id
	//
	// Returns:
	//   - command.Storage: the storage
	//   - bool: false if id is not in the current frame
	Storage(id string) (command.Storage, bool)

	// GeometryLibrary returns the mesh library the scene builds with.
	//
	// Returns:
	//   - library.GeometryLibrary: the mesh library
	GeometryLibrary() library.GeometryLibrary

	// ShaderLibrary returns the pipeline and texture library the scene builds with.
	//
	// Returns:
	//   - library.ShaderLibrary: the shader library
	ShaderLibrary() library.ShaderLibrary

	// Release frees every storage and both libraries. The scene must not be used afterwards.
	Release()
}

type scene struct {
	ctx          command.BuildContext
	skipFailures bool
	pairs        []Pair
	byID         map[string]int
}

var _ Scene = &scene{}

// NewScene creates an empty scene building resources on device.
//
// Parameters:
//   - device: the device storages allocate on
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the empty scene
func NewScene(device gpu.Device, options ...SceneBuilderOption) Scene {
	s := &scene{
		ctx:  command.BuildContext{Device: device},
		byID: make(map[string]int),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.ctx.Geometry == nil {
		s.ctx.Geometry = library.NewGeometryLibrary(device)
	}
	if s.ctx.Shaders == nil {
		s.ctx.Shaders = library.NewShaderLibrary(device)
	}
	return s
}

// validate reports the first id used by more than one command.
func validate(cmds []command.Command) error {
	seen := make(map[string]int, len(cmds))
	for i, c := range cmds {
		id := c.Info().ID
		if first, ok := seen[id]; ok {
			return &DuplicateIDError{ID: id, First: first, Second: i}
		}
		seen[id] = i
	}
	return nil
}

func (s *scene) SetContent(node Node, surfaceAspect float32) error {
	var cmds []command.Command
	if node != nil {
		cmds = node.DrawCommands()
	}
	if err := validate(cmds); err != nil {
		return err
	}

	var geoms []geometry.Geometry
	for _, cmd := range cmds {
		if g, ok := cmd.(*command.RenderGeometry); ok && g.Geometry != nil {
			geoms = append(geoms, g.Geometry)
		}
	}
	s.ctx.Geometry.Prepare(geoms)

	ctx := s.ctx
	ctx.SurfaceAspect = surfaceAspect
	log := common.Logger()

	pairs := make([]Pair, 0, len(cmds))
	byID := make(map[string]int, len(cmds))
	var (
		fresh    []command.Storage
		restores []func()
	)
	abort := func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		for _, st := range fresh {
			st.Release()
		}
	}

	for _, cmd := range cmds {
		id := cmd.Info().ID
		var storage command.Storage
		retained := false
		if i, ok := s.byID[id]; ok && s.pairs[i].Storage.Kind() == cmd.Kind() {
			storage, retained = s.pairs[i].Storage, true
			restores = append(restores, storage.Snapshot())
		} else {
			st, err := command.NewStorage(cmd.Kind())
			if err != nil {
				abort()
				return &BuildError{ID: id, Kind: cmd.Kind(), Err: err}
			}
			storage = st
			fresh = append(fresh, st)
		}

		if err := storage.Build(&ctx, cmd, retained); err != nil {
			if !s.skipFailures {
				abort()
				return &BuildError{ID: id, Kind: cmd.Kind(), Err: err}
			}
			log.Warn("skipping command", "id", id, "kind", cmd.Kind(), "error", err)
			continue
		}
		byID[id] = len(pairs)
		pairs = append(pairs, Pair{Command: cmd, Storage: storage})
	}

	// Release storage no longer referenced: vanished ids, kind changes, skipped commands.
	kept := make(map[command.Storage]bool, len(pairs))
	for _, p := range pairs {
		kept[p.Storage] = true
	}
	for _, p := range s.pairs {
		if !kept[p.Storage] {
			log.Debug("releasing storage", "id", p.Command.Info().ID, "kind", p.Storage.Kind())
			p.Storage.Release()
		}
	}
	for _, st := range fresh {
		if !kept[st] {
			st.Release()
		}
	}

	s.pairs, s.byID = pairs, byID
	return nil
}

func (s *scene) Update(t float64) {
	for _, p := range s.pairs {
		p.Storage.Update(t, p.Command)
	}
}

func (s *scene) Pairs() []Pair {
	return s.pairs
}

func (s *scene) Storage(id string) (command.Storage, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.pairs[i].Storage, true
}

func (s *scene) GeometryLibrary() library.GeometryLibrary {
	return s.ctx.Geometry
}

func (s *scene) ShaderLibrary() library.ShaderLibrary {
	return s.ctx.Shaders
}

func (s *scene) Release() {
	for _, p := range s.pairs {
		p.Storage.Release()
	}
	s.pairs, s.byID = nil, make(map[string]int)
	s.ctx.Geometry.Release()
	s.ctx.Shaders.Release()
}
