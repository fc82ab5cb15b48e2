package wgpu

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/gogpu/naga"
)

// spirvCache memoizes WGSL compilation results by source hash. Kernel
// sources repeat across backend instances (every Launcher re-Compiles the
// same program), and naga is by far the most expensive step of Compile.
var spirvCache struct {
	mu      sync.Mutex
	entries map[uint64][]uint32
}

// compileToSPIRV compiles WGSL source to SPIR-V words, with caching.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(wgslSource)) // fnv.Write never returns an error
	key := h.Sum64()

	spirvCache.mu.Lock()
	cached, ok := spirvCache.entries[key]
	spirvCache.mu.Unlock()
	if ok {
		return cached, nil
	}

	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("naga: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	spirvCache.mu.Lock()
	if spirvCache.entries == nil {
		spirvCache.entries = make(map[uint64][]uint32)
	}
	spirvCache.entries[key] = spirvCode
	spirvCache.mu.Unlock()
	return spirvCode, nil
}
