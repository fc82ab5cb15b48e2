// Package backend defines the compute backend abstraction and registry.
//
// A backend compiles backend-neutral kernel programs into launchable
// kernels and owns the device-side synchronization point. Concrete
// implementations live in subpackages and register themselves on import:
//
//	import (
//		_ "github.com/gogpu/stencil/backend/cpu"
//		_ "github.com/gogpu/stencil/backend/wgpu"
//	)
//
//	b, err := backend.InitDefault()
//
// Selection prefers wgpu over cpu when both are registered. Programs
// carry both a WGSL source and a Go function, so one definition runs on
// either backend.
package backend
