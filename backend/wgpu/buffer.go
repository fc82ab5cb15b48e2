package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stencil/backend"
)

// Buffer is a device-side storage buffer usable as a kernel launch
// argument. Create with NewBuffer, release with Destroy.
type Buffer struct {
	backend *Backend
	buf     hal.Buffer
	size    uint64
	label   string
}

// NewBuffer allocates a storage buffer of the given byte size.
func (b *Backend) NewBuffer(label string, size uint64) (*Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	return &Buffer{backend: b, buf: buf, size: size, label: label}, nil
}

// Size returns the buffer's byte size.
func (buf *Buffer) Size() uint64 { return buf.size }

// Upload copies data into the buffer starting at byte 0.
func (buf *Buffer) Upload(data []byte) error {
	b := buf.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	if uint64(len(data)) > buf.size {
		return fmt.Errorf("wgpu: upload %d bytes into %d-byte buffer %q", len(data), buf.size, buf.label)
	}
	b.queue.WriteBuffer(buf.buf, 0, data)
	return nil
}

// Download reads the buffer into dst. It drains outstanding launches
// first, so the bytes reflect every previously submitted kernel, then
// copies through a transient staging buffer.
func (buf *Buffer) Download(dst []byte) error {
	b := buf.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	if uint64(len(dst)) > buf.size {
		return fmt.Errorf("wgpu: download %d bytes from %d-byte buffer %q", len(dst), buf.size, buf.label)
	}
	if err := b.drainLocked(); err != nil {
		return err
	}

	n := uint64(len(dst))
	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: buf.label + "_staging", Size: n,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: buf.label + "_readback"})
	if err != nil {
		return fmt.Errorf("wgpu: create readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding(buf.label + "_readback"); err != nil {
		return fmt.Errorf("wgpu: begin readback encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(buf.buf, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: n},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end readback encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create readback fence: %w", err)
	}
	defer b.device.DestroyFence(fence)
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit readback: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: wait for readback: ok=%v err=%w", ok, err)
	}
	return b.queue.ReadBuffer(staging, 0, dst)
}

// UploadFloat32 copies a float32 slice into the buffer.
func (buf *Buffer) UploadFloat32(data []float32) error {
	return buf.Upload(float32Bytes(data))
}

// DownloadFloat32 reads the buffer into a float32 slice.
func (buf *Buffer) DownloadFloat32(dst []float32) error {
	raw := make([]byte, len(dst)*4)
	if err := buf.Download(raw); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return nil
}

// Destroy releases the buffer's device memory.
func (buf *Buffer) Destroy() {
	b := buf.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf.buf != nil && b.device != nil {
		b.device.DestroyBuffer(buf.buf)
	}
	buf.buf = nil
}

func float32Bytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
