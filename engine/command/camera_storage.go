package command

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/chewxy/math32"
)

const (
	defaultFOV  = math32.Pi / 3
	defaultNear = 0.1
	defaultFar  = 1000
)

type cameraStorage struct {
	transform animation.Track[common.Transform]
	resolved  common.Transform
	fov       float32
	near      float32
	far       float32
	aspect    float32
}

var (
	_ Storage     = &cameraStorage{}
	_ CameraState = &cameraStorage{}
)

func (s *cameraStorage) Kind() Kind { return KindCamera }

func (s *cameraStorage) Build(ctx *BuildContext, cmd Command, retained bool) error {
	c, ok := cmd.(*PlaceCamera)
	if !ok {
		return mismatch(KindCamera, cmd)
	}
	s.fov = common.Coalesce(c.FOV, defaultFOV)
	s.near = common.Coalesce(c.Near, defaultNear)
	s.far = common.Coalesce(c.Far, defaultFar)
	s.aspect = ctx.SurfaceAspect
	if !retained {
		s.transform.Reset()
		s.resolved = c.transform()
	}
	return nil
}

func (s *cameraStorage) Snapshot() func() {
	saved := *s
	return func() { *s = saved }
}

func (s *cameraStorage) Update(t float64, cmd Command) {
	info := cmd.Info()
	s.resolved = s.transform.Resolve(t, info.transform(), info.Animations, animation.SelectorTransform, common.Transform.Lerp)
}

func (s *cameraStorage) Render(gpu.Encoder) error { return nil }

func (s *cameraStorage) Release() {}

func (s *cameraStorage) Camera(aspect float32) (gpu.ViewProjection, common.Vec3) {
	if aspect <= 0 {
		aspect = s.aspect
	}
	if aspect <= 0 {
		aspect = 1
	}
	proj := common.Perspective(s.fov, aspect, s.near, s.far)

	eye := s.resolved.Translation
	rot := s.resolved.Rotation
	view := common.LookAt(eye, eye.Add(rot.Rotate(common.Forward)), rot.Rotate(common.Up))
	sky := view
	sky[12], sky[13], sky[14] = 0, 0, 0

	return gpu.ViewProjection{
		ViewProj:    proj.Mul(view),
		SkyViewProj: proj.Mul(sky),
	}, eye
}
