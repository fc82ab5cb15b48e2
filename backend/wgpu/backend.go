package wgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stencil"
	"github.com/gogpu/stencil/backend"
)

func init() {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return New()
	})
}

// fenceTimeout bounds a single fence wait. A kernel that keeps the GPU
// busy longer than this is treated as a lost device.
const fenceTimeout = 5 * time.Second

// submission is one in-flight launch: the fence that signals its
// completion and the transient resources to release afterwards.
type submission struct {
	fence     hal.Fence
	cmdBuf    hal.CommandBuffer
	bindGroup hal.BindGroup
	params    hal.Buffer
}

// Backend executes kernels on a wgpu HAL device.
type Backend struct {
	mu sync.Mutex

	instance    hal.Instance
	device      hal.Device
	queue       hal.Queue
	adapterName string

	kernels []*kernel
	pending []submission

	initialized    bool
	externalDevice bool // true when using a shared device (don't destroy on Close)
}

// New creates an uninitialized GPU backend. Call Init (or SetDeviceHandle)
// before use.
func New() *Backend {
	return &Backend{}
}

// Name returns "wgpu".
func (b *Backend) Name() string { return backend.BackendWGPU }

// Init opens an owned GPU device. Calling Init on an initialized backend
// is a no-op.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	if err := b.initGPU(); err != nil {
		return err
	}
	b.initialized = true
	stencil.Logger().Debug("wgpu backend initialized", "adapter", b.adapterName)
	return nil
}

// Close drains outstanding work and releases every owned resource.
// A shared device is detached, not destroyed.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	if err := b.drainLocked(); err != nil {
		stencil.Logger().Warn("wgpu: drain on close", "error", err)
	}
	b.destroyKernelsLocked()
	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	b.initialized = false
	b.externalDevice = false
}

// Synchronize blocks until every tracked submission has completed, then
// releases the transient resources the launches held.
func (b *Backend) Synchronize() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	return b.drainLocked()
}

// drainLocked waits on every pending fence and frees per-launch resources.
// The pending list is always cleared; the first wait failure wins.
func (b *Backend) drainLocked() error {
	var firstErr error
	for _, s := range b.pending {
		ok, err := b.device.Wait(s.fence, 1, fenceTimeout)
		if err == nil && !ok {
			err = fmt.Errorf("wgpu: fence wait timed out")
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
		b.device.FreeCommandBuffer(s.cmdBuf)
		b.device.DestroyBindGroup(s.bindGroup)
		b.device.DestroyBuffer(s.params)
		b.device.DestroyFence(s.fence)
	}
	b.pending = b.pending[:0]
	return firstErr
}

// SetupWorker is the per-worker hook launchers call once per slab agent.
// HAL queue submission is already serialized under the backend lock, so
// workers need no device-side state of their own.
func (b *Backend) SetupWorker(dim int, side stencil.Side, p stencil.Priority) error {
	stencil.Logger().Debug("wgpu worker setup", "dim", dim, "side", side, "priority", p)
	return nil
}

// Compile builds a compute pipeline from the program's WGSL source.
// groupSize must match the shader's @workgroup_size; missing dimensions
// default to 1.
func (b *Backend) Compile(p backend.Program, groupSize []int) (stencil.Kernel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if p.WGSL == "" {
		return nil, fmt.Errorf("%w: %q has no WGSL source", backend.ErrNoEntry, p.Label)
	}
	entry := p.Entry
	if entry == "" {
		entry = "main"
	}

	var gs [3]uint32
	for i := range gs {
		gs[i] = 1
		if i < len(groupSize) && groupSize[i] > 0 {
			gs[i] = uint32(groupSize[i])
		}
	}

	spirv, err := compileToSPIRV(p.WGSL)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile %q: %w", p.Label, err)
	}
	module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.Label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: shader module %q: %w", p.Label, err)
	}

	k := &kernel{
		backend:   b,
		label:     p.Label,
		entry:     entry,
		module:    module,
		groupSize: gs,
	}
	b.kernels = append(b.kernels, k)
	return k, nil
}

// destroyKernelsLocked tears down every compiled pipeline.
func (b *Backend) destroyKernelsLocked() {
	for _, k := range b.kernels {
		k.destroyLocked()
	}
	b.kernels = nil
}

// AdapterName returns the name of the selected GPU adapter, or "" before
// Init.
func (b *Backend) AdapterName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adapterName
}
