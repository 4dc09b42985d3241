// Package library holds the per-surface GPU resource caches: meshes by geometry key,
// pipelines by program pair and vertex layout, and textures by color or image name.
package library

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/cache"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// GeometryLibrary uploads each distinct geometry once and hands out the shared mesh.
type GeometryLibrary interface {
	// Mesh returns the device mesh for g, uploading it on the first request for its cache key.
	//
	// Parameters:
	//   - g: the geometry to resolve
	//
	// Returns:
	//   - *gpu.Mesh: the shared mesh
	//   - error: *cache.BuildError if generation or upload failed
	Mesh(g geometry.Geometry) (*gpu.Mesh, error)

	// Prepare generates the mesh data of every uncached geometry in geoms on the library's
	// worker pool, so the following Mesh calls only upload. Uploads stay on the caller's goroutine.
	// Data prepared by an earlier call and not consumed since is dropped.
	//
	// Parameters:
	//   - geoms: the geometries about to be resolved
	Prepare(geoms []geometry.Geometry)

	// Meshes returns the number of cached meshes.
	//
	// Returns:
	//   - int: the mesh count
	Meshes() int

	// Release frees every cached mesh. The library must not be used afterwards.
	Release()
}

// meshQueueSize bounds the tasks submitted to the worker pool between barriers.
const meshQueueSize = 256

type preparedMesh struct {
	data geometry.MeshData
	err  error
}

type geometryLibrary struct {
	device gpu.Device
	store  cache.Store[string, *gpu.Mesh]
	meshes cache.Cache[string, *gpu.Mesh]

	workers  int
	pool     worker.DynamicWorkerPool
	prepared map[string]preparedMesh
}

var _ GeometryLibrary = &geometryLibrary{}

// NewGeometryLibrary creates a mesh library uploading through device.
//
// Parameters:
//   - device: the device meshes are created on
//   - options: functional options to configure the library
//
// Returns:
//   - GeometryLibrary: the mesh library
func NewGeometryLibrary(device gpu.Device, options ...GeometryLibraryBuilderOption) GeometryLibrary {
	l := &geometryLibrary{
		device:   device,
		workers:  max(runtime.NumCPU()-1, 1),
		prepared: make(map[string]preparedMesh),
	}
	for _, opt := range options {
		opt(l)
	}
	var cacheOpts []cache.CacheBuilderOption[string, *gpu.Mesh]
	if l.store != nil {
		cacheOpts = append(cacheOpts, cache.WithStore(l.store))
	}
	l.meshes = cache.New[string, *gpu.Mesh]("mesh", cacheOpts...)
	return l
}

func (l *geometryLibrary) Mesh(g geometry.Geometry) (*gpu.Mesh, error) {
	key := g.CacheKey()
	return l.meshes.GetOrBuild(key, func() (*gpu.Mesh, error) {
		return l.upload(key, g)
	})
}

type meshJob struct {
	key string
	g   geometry.Geometry
}

func (l *geometryLibrary) Prepare(geoms []geometry.Geometry) {
	clear(l.prepared)
	if l.workers <= 1 {
		return
	}

	var jobs []meshJob
	seen := make(map[string]bool, len(geoms))
	for _, g := range geoms {
		if g == nil {
			continue
		}
		key := g.CacheKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := l.meshes.Get(key); !ok {
			jobs = append(jobs, meshJob{key: key, g: g})
		}
	}
	// A single generation is not worth the handoff.
	if len(jobs) < 2 {
		return
	}
	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(l.workers, meshQueueSize, time.Second)
	}

	results := make([]preparedMesh, len(jobs))
	for start := 0; start < len(jobs); start += meshQueueSize {
		end := min(start+meshQueueSize, len(jobs))
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			job := jobs[i]
			l.pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					data, err := job.g.MeshData()
					results[i] = preparedMesh{data: data, err: err}
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	for i, job := range jobs {
		l.prepared[job.key] = results[i]
	}
	common.Logger().Debug("mesh data prepared", "meshes", len(jobs), "workers", l.workers)
}

func (l *geometryLibrary) meshData(key string, g geometry.Geometry) (geometry.MeshData, error) {
	if p, ok := l.prepared[key]; ok {
		delete(l.prepared, key)
		return p.data, p.err
	}
	return g.MeshData()
}

func (l *geometryLibrary) upload(key string, g geometry.Geometry) (*gpu.Mesh, error) {
	data, err := l.meshData(key, g)
	if err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	mesh := &gpu.Mesh{Key: key, Layout: gpu.StandardVertexLayout()}
	vb, err := l.device.CreateBuffer(gpu.BufferDescriptor{
		Label:    key + " vertices",
		Usage:    gpu.BufferUsageVertex,
		Contents: data.VertexBytes(),
	})
	if err != nil {
		return nil, err
	}
	mesh.VertexBuffers = append(mesh.VertexBuffers, vb)

	for i, indices := range data.Submeshes {
		ib, err := l.device.CreateBuffer(gpu.BufferDescriptor{
			Label:    fmt.Sprintf("%s indices %d", key, i),
			Usage:    gpu.BufferUsageIndex,
			Contents: data.IndexBytes(i),
		})
		if err != nil {
			mesh.Release()
			return nil, err
		}
		mesh.Submeshes = append(mesh.Submeshes, gpu.Submesh{IndexBuffer: ib, IndexCount: uint32(len(indices))})
	}

	common.Logger().Debug("mesh uploaded", "key", key, "vertices", len(data.Vertices), "submeshes", len(data.Submeshes))
	return mesh, nil
}

func (l *geometryLibrary) Meshes() int {
	return l.meshes.Len()
}

func (l *geometryLibrary) Release() {
	l.meshes.Each(func(m *gpu.Mesh) { m.Release() })
}
