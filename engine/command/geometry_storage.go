package command

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/shader"
)

type geometryStorage struct {
	meshKey     string
	mesh        *gpu.Mesh
	pipelineKey gpu.PipelineKey
	pipeline    gpu.Pipeline
	shaderKey   string
	textures    []gpu.Texture
	model       gpu.Buffer

	transform animation.Track[common.Transform]
	resolved  common.Transform
}

var (
	_ Storage       = &geometryStorage{}
	_ GeometryState = &geometryStorage{}
)

func (s *geometryStorage) Kind() Kind { return KindGeometry }

// Build resolves each resource through its library only when its key changed since the
// last successful build. State is committed only once every resource resolved.
func (s *geometryStorage) Build(ctx *BuildContext, cmd Command, retained bool) error {
	g, ok := cmd.(*RenderGeometry)
	if !ok {
		return mismatch(KindGeometry, cmd)
	}
	if g.Geometry == nil {
		return fmt.Errorf("geometry command %q has no geometry", g.ID)
	}
	sh := g.shader()

	meshKey, mesh := s.meshKey, s.mesh
	if !retained || mesh == nil || meshKey != g.Geometry.CacheKey() {
		m, err := ctx.Geometry.Mesh(g.Geometry)
		if err != nil {
			return err
		}
		meshKey, mesh = g.Geometry.CacheKey(), m
	}

	desc := shader.Descriptor(sh, mesh.Layout, g.CullBackfaces)
	pipeline := s.pipeline
	if !retained || pipeline == nil || s.pipelineKey != desc.Key {
		p, err := ctx.Shaders.Pipeline(desc)
		if err != nil {
			return err
		}
		pipeline = p
	}

	shaderKey, textures := s.shaderKey, s.textures
	if !retained || shaderKey != shader.Key(sh) {
		sources := sh.Textures()
		textures = make([]gpu.Texture, 0, len(sources))
		for _, src := range sources {
			t, err := ctx.Shaders.Texture(src)
			if err != nil {
				return err
			}
			textures = append(textures, t)
		}
		shaderKey = shader.Key(sh)
	}

	if s.model == nil {
		u := gpu.ModelUniform{}
		b, err := ctx.Device.CreateBuffer(gpu.BufferDescriptor{
			Label: g.ID + " model",
			Usage: gpu.BufferUsageUniform,
			Size:  uint64(u.Size()),
		})
		if err != nil {
			return err
		}
		s.model = b
	}

	s.meshKey, s.mesh = meshKey, mesh
	s.pipelineKey, s.pipeline = desc.Key, pipeline
	s.shaderKey, s.textures = shaderKey, textures
	if !retained {
		s.transform.Reset()
		s.resolved = g.transform()
	}
	return nil
}

func (s *geometryStorage) Snapshot() func() {
	saved := *s
	return func() { *s = saved }
}

func (s *geometryStorage) Update(t float64, cmd Command) {
	info := cmd.Info()
	s.resolved = s.transform.Resolve(t, info.transform(), info.Animations, animation.SelectorTransform, common.Transform.Lerp)
}

func (s *geometryStorage) Render(enc gpu.Encoder) error {
	m := s.resolved.Matrix()
	u := gpu.ModelUniform{Model: m, Normal: m.NormalMatrix()}
	if err := s.model.Write(u.Marshal()); err != nil {
		return fmt.Errorf("failed to upload model uniform: %w", err)
	}

	enc.SetPipeline(s.pipeline)
	enc.SetUniform(gpu.SlotModel, s.model)
	for i, t := range s.textures {
		enc.SetTexture(i, t)
	}
	for i, vb := range s.mesh.VertexBuffers {
		enc.SetVertexBuffer(i, vb)
	}
	for _, sub := range s.mesh.Submeshes {
		if err := enc.DrawIndexed(sub, 1); err != nil {
			return err
		}
	}
	return nil
}

// Release frees the model uniform. The mesh, pipeline and textures belong to the libraries.
func (s *geometryStorage) Release() {
	if s.model != nil {
		s.model.Release()
		s.model = nil
	}
}

func (s *geometryStorage) Mesh() *gpu.Mesh { return s.mesh }

func (s *geometryStorage) Pipeline() gpu.Pipeline { return s.pipeline }
