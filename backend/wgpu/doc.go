// Package wgpu implements the GPU compute backend on gogpu/wgpu HAL.
//
// Kernels are WGSL compute shaders, compiled to SPIR-V through naga and
// dispatched on a Vulkan device. Launch arguments are device buffers
// created with NewBuffer; launch geometry travels in a uniform buffer
// alongside them. Launches are asynchronous: each submission is tracked
// by a fence, and Synchronize blocks until every tracked fence signals.
//
// The backend either owns its device (Init enumerates adapters and opens
// the best one) or borrows a shared device from a host application via
// SetDeviceHandle.
package wgpu
