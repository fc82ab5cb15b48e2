package backend

import (
	"context"
	"testing"

	"github.com/gogpu/stencil"
)

type stubBackend struct {
	name string
}

func (b *stubBackend) Name() string       { return b.name }
func (b *stubBackend) Init() error        { return nil }
func (b *stubBackend) Close()             {}
func (b *stubBackend) Synchronize() error { return nil }
func (b *stubBackend) Compile(Program, []int) (stencil.Kernel, error) {
	return stubKernel{}, nil
}

type stubKernel struct{}

func (stubKernel) Launch(context.Context, []int, stencil.Offset, ...any) error { return nil }

func TestRegisterAndGet(t *testing.T) {
	Register("stub", func() Backend { return &stubBackend{name: "stub"} })
	defer Unregister("stub")

	if !IsRegistered("stub") {
		t.Error("IsRegistered(stub) = false after Register")
	}
	b := Get("stub")
	if b == nil {
		t.Fatal("Get(stub) = nil")
	}
	if b.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", b.Name())
	}
}

func TestGetUnknown(t *testing.T) {
	if b := Get("no-such-backend"); b != nil {
		t.Errorf("Get(unknown) = %v, want nil", b)
	}
}

func TestUnregister(t *testing.T) {
	Register("ephemeral", func() Backend { return &stubBackend{name: "ephemeral"} })
	Unregister("ephemeral")

	if IsRegistered("ephemeral") {
		t.Error("backend still registered after Unregister")
	}
}

func TestAvailable(t *testing.T) {
	Register("avail-test", func() Backend { return &stubBackend{name: "avail-test"} })
	defer Unregister("avail-test")

	found := false
	for _, name := range Available() {
		if name == "avail-test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, missing avail-test", Available())
	}
}

func TestDefaultPrefersWGPU(t *testing.T) {
	Register(BackendCPU, func() Backend { return &stubBackend{name: BackendCPU} })
	Register(BackendWGPU, func() Backend { return &stubBackend{name: BackendWGPU} })
	defer Unregister(BackendCPU)
	defer Unregister(BackendWGPU)

	b := Default()
	if b == nil {
		t.Fatal("Default() = nil")
	}
	if b.Name() != BackendWGPU {
		t.Errorf("Default().Name() = %q, want %q", b.Name(), BackendWGPU)
	}
}

func TestDefaultFallsBackToCPU(t *testing.T) {
	Register(BackendCPU, func() Backend { return &stubBackend{name: BackendCPU} })
	defer Unregister(BackendCPU)

	b := Default()
	if b == nil {
		t.Fatal("Default() = nil")
	}
	if b.Name() != BackendCPU {
		t.Errorf("Default().Name() = %q, want %q", b.Name(), BackendCPU)
	}
}

func TestInitDefaultNoBackends(t *testing.T) {
	// Registry may hold leftovers from other tests; snapshot and clear.
	saved := map[string]Factory{}
	registryMu.Lock()
	for name, f := range backends {
		saved[name] = f
		delete(backends, name)
	}
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		for name, f := range saved {
			backends[name] = f
		}
		registryMu.Unlock()
	})

	if _, err := InitDefault(); err != ErrBackendNotAvailable {
		t.Errorf("InitDefault() = %v, want ErrBackendNotAvailable", err)
	}
}
