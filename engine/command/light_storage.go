package command

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

type lightStorage struct {
	transform animation.Track[common.Transform]
	color     animation.Track[common.Vec4]
	light     gpu.Light
}

var (
	_ Storage    = &lightStorage{}
	_ LightState = &lightStorage{}
)

func (s *lightStorage) Kind() Kind { return KindLight }

func (s *lightStorage) Build(_ *BuildContext, cmd Command, retained bool) error {
	l, ok := cmd.(*PlaceLight)
	if !ok {
		return mismatch(KindLight, cmd)
	}
	if !retained {
		s.transform.Reset()
		s.color.Reset()
		s.light = uniform(l.Type, l.transform(), l.Color)
	}
	return nil
}

func (s *lightStorage) Snapshot() func() {
	saved := *s
	return func() { *s = saved }
}

func (s *lightStorage) Update(t float64, cmd Command) {
	l, ok := cmd.(*PlaceLight)
	if !ok {
		return
	}
	tr := s.transform.Resolve(t, l.transform(), l.Animations, animation.SelectorTransform, common.Transform.Lerp)
	color := s.color.Resolve(t, l.Color, l.Animations, animation.SelectorColor, common.Vec4.Lerp)
	s.light = uniform(l.Type, tr, color)
}

func (s *lightStorage) Render(gpu.Encoder) error { return nil }

func (s *lightStorage) Release() {}

func (s *lightStorage) Light() gpu.Light { return s.light }

// uniform packs a light for the shaders: position.w holds the type code, color.a the intensity.
func uniform(kind LightType, tr common.Transform, color common.Vec4) gpu.Light {
	var pos common.Vec3
	switch kind {
	case LightDirectional:
		pos = tr.Rotation.Rotate(common.Back)
	case LightPoint:
		pos = tr.Translation
	}
	return gpu.Light{Position: pos.Vec4(float32(kind)), Color: color}
}
