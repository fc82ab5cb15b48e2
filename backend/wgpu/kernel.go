package wgpu

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stencil"
)

// launchParamsSize is the byte size of the uniform block every kernel
// receives at binding 0: dims (u32 + padding) plus size and offset as
// vec4<i32>.
const launchParamsSize = 48

// maxLaunchDims is the dispatch grid limit of the compute API.
const maxLaunchDims = 3

// kernel is a compiled compute pipeline. The bind group layout is fixed
// on the first launch, when the argument count becomes known: binding 0
// is the launch parameter uniform, bindings 1..n are the argument
// buffers in order.
type kernel struct {
	backend   *Backend
	label     string
	entry     string
	module    hal.ShaderModule
	groupSize [3]uint32

	arity      int // meaningful once pipeline is non-nil
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// Launch dispatches the kernel over the given region. All arguments must
// be buffers created on this backend. The launch is asynchronous;
// completion is observed through the backend's Synchronize.
func (k *kernel) Launch(ctx context.Context, size []int, off stencil.Offset, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(size) == 0 || len(size) > maxLaunchDims {
		return fmt.Errorf("wgpu: launch %q: %d dimensions, supported range is 1..%d", k.label, len(size), maxLaunchDims)
	}
	if off.Dims() != len(size) {
		return fmt.Errorf("wgpu: launch %q: size %v does not match offset %v", k.label, size, off)
	}
	for _, n := range size {
		if n <= 0 {
			return nil // empty region
		}
	}

	bufs := make([]*Buffer, len(args))
	for i, a := range args {
		buf, ok := a.(*Buffer)
		if !ok || buf == nil {
			return fmt.Errorf("wgpu: launch %q: argument %d is %T, want *wgpu.Buffer", k.label, i, a)
		}
		bufs[i] = buf
	}

	b := k.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return fmt.Errorf("wgpu: launch %q: backend not initialized", k.label)
	}
	if k.module == nil && k.pipeline == nil {
		return fmt.Errorf("wgpu: launch %q: kernel was destroyed", k.label)
	}
	if err := k.ensurePipelineLocked(len(bufs)); err != nil {
		return err
	}

	paramsBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: k.label + "_params", Size: launchParamsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: launch %q: create params buffer: %w", k.label, err)
	}
	b.queue.WriteBuffer(paramsBuf, 0, packLaunchParams(size, off))

	entries := make([]gputypes.BindGroupEntry, 0, len(bufs)+1)
	entries = append(entries, gputypes.BindGroupEntry{
		Binding:  0,
		Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: launchParamsSize},
	})
	for i, buf := range bufs {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(i + 1),
			Resource: gputypes.BufferBinding{Buffer: buf.buf.NativeHandle(), Offset: 0, Size: buf.size},
		})
	}
	bindGroup, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: k.label + "_bind", Layout: k.bindLayout, Entries: entries,
	})
	if err != nil {
		b.device.DestroyBuffer(paramsBuf)
		return fmt.Errorf("wgpu: launch %q: create bind group: %w", k.label, err)
	}

	cmdBuf, err := k.encodeLocked(size, bindGroup)
	if err != nil {
		b.device.DestroyBindGroup(bindGroup)
		b.device.DestroyBuffer(paramsBuf)
		return err
	}

	fence, err := b.device.CreateFence()
	if err != nil {
		b.device.FreeCommandBuffer(cmdBuf)
		b.device.DestroyBindGroup(bindGroup)
		b.device.DestroyBuffer(paramsBuf)
		return fmt.Errorf("wgpu: launch %q: create fence: %w", k.label, err)
	}
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		b.device.DestroyFence(fence)
		b.device.FreeCommandBuffer(cmdBuf)
		b.device.DestroyBindGroup(bindGroup)
		b.device.DestroyBuffer(paramsBuf)
		return fmt.Errorf("wgpu: launch %q: submit: %w", k.label, err)
	}

	b.pending = append(b.pending, submission{
		fence: fence, cmdBuf: cmdBuf, bindGroup: bindGroup, params: paramsBuf,
	})
	stencil.Logger().Debug("wgpu launch", "kernel", k.label, "size", size, "offset", off)
	return nil
}

// encodeLocked records one compute pass dispatching the launch region.
func (k *kernel) encodeLocked(size []int, bindGroup hal.BindGroup) (hal.CommandBuffer, error) {
	b := k.backend
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: k.label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: launch %q: create command encoder: %w", k.label, err)
	}
	if err := encoder.BeginEncoding(k.label); err != nil {
		return nil, fmt.Errorf("wgpu: launch %q: begin encoding: %w", k.label, err)
	}

	var groups [3]uint32
	for i := range groups {
		groups[i] = 1
		if i < len(size) {
			groups[i] = (uint32(size[i]) + k.groupSize[i] - 1) / k.groupSize[i]
		}
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: k.label})
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(groups[0], groups[1], groups[2])
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: launch %q: end encoding: %w", k.label, err)
	}
	return cmdBuf, nil
}

// ensurePipelineLocked creates the bind group layout and pipeline on the
// first launch and pins the argument count for all later ones.
func (k *kernel) ensurePipelineLocked(arity int) error {
	if k.pipeline != nil {
		if arity != k.arity {
			return fmt.Errorf("wgpu: launch %q: %d arguments, pipeline was built for %d", k.label, arity, k.arity)
		}
		return nil
	}

	b := k.backend
	layoutEntries := make([]gputypes.BindGroupLayoutEntry, 0, arity+1)
	layoutEntries = append(layoutEntries, gputypes.BindGroupLayoutEntry{
		Binding: 0, Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	})
	for i := 0; i < arity; i++ {
		layoutEntries = append(layoutEntries, gputypes.BindGroupLayoutEntry{
			Binding: uint32(i + 1), Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		})
	}

	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: k.label + "_bind_layout", Entries: layoutEntries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: %q: create bind group layout: %w", k.label, err)
	}
	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: k.label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		b.device.DestroyBindGroupLayout(bindLayout)
		return fmt.Errorf("wgpu: %q: create pipeline layout: %w", k.label, err)
	}
	pipeline, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: k.label, Layout: pipeLayout,
		Compute: hal.ComputeState{Module: k.module, EntryPoint: k.entry},
	})
	if err != nil {
		b.device.DestroyPipelineLayout(pipeLayout)
		b.device.DestroyBindGroupLayout(bindLayout)
		return fmt.Errorf("wgpu: %q: create compute pipeline: %w", k.label, err)
	}

	k.arity = arity
	k.bindLayout = bindLayout
	k.pipeLayout = pipeLayout
	k.pipeline = pipeline
	return nil
}

// destroyLocked releases the kernel's GPU objects. Requires backend.mu.
func (k *kernel) destroyLocked() {
	b := k.backend
	if b.device == nil {
		return
	}
	if k.pipeline != nil {
		b.device.DestroyComputePipeline(k.pipeline)
		k.pipeline = nil
	}
	if k.pipeLayout != nil {
		b.device.DestroyPipelineLayout(k.pipeLayout)
		k.pipeLayout = nil
	}
	if k.bindLayout != nil {
		b.device.DestroyBindGroupLayout(k.bindLayout)
		k.bindLayout = nil
	}
	if k.module != nil {
		b.device.DestroyShaderModule(k.module)
		k.module = nil
	}
}

// packLaunchParams serializes the launch geometry for binding 0:
// dims as u32 (padded to 16 bytes), then size and offset as vec4<i32>.
func packLaunchParams(size []int, off stencil.Offset) []byte {
	out := make([]byte, launchParamsSize)
	binary.LittleEndian.PutUint32(out[0:], uint32(len(size)))
	for i := 0; i < len(size) && i < 4; i++ {
		binary.LittleEndian.PutUint32(out[16+i*4:], uint32(int32(size[i])))
		binary.LittleEndian.PutUint32(out[32+i*4:], uint32(int32(off.At(i))))
	}
	return out
}
