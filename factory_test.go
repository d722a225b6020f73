package staticlib

import (
	"context"
	"errors"
	"testing"
)

// fakeToolchain is a controllable Toolchain for factory tests.
type fakeToolchain struct {
	name     string
	usable   bool
	failWith error
	builds   int
}

func (f *fakeToolchain) Name() string   { return f.name }
func (f *fakeToolchain) CanBuild() bool { return f.usable }

func (f *fakeToolchain) Build(_ context.Context, _ *BuildConfig, step *Step) (*BuildResult, error) {
	f.builds++
	if f.failWith != nil {
		return &BuildResult{Success: false, Error: f.failWith}, f.failWith
	}
	return &BuildResult{Success: true, Archive: ArchiveFileName(step.Archive)}, nil
}

func (f *fakeToolchain) Clean(_ context.Context, _ *BuildConfig, _ *Step) error { return nil }

func TestNewToolchainFactoryRegistersStandardToolchains(t *testing.T) {
	factory := NewToolchainFactory()

	toolchains := factory.ListToolchains()
	if len(toolchains) != 2 {
		t.Fatalf("expected 2 standard toolchains, got %d", len(toolchains))
	}

	// MSVC first so Windows hosts with both toolchains prefer cl.
	if toolchains[0].Name() != "MSVC" {
		t.Fatalf("expected MSVC first, got %s", toolchains[0].Name())
	}
	if toolchains[1].Name() != "GNU" {
		t.Fatalf("expected GNU second, got %s", toolchains[1].Name())
	}
}

func TestHostToolchainSelectsFirstUsable(t *testing.T) {
	factory := &ToolchainFactory{}
	factory.Register(&fakeToolchain{name: "first", usable: false})
	factory.Register(&fakeToolchain{name: "second", usable: true})
	factory.Register(&fakeToolchain{name: "third", usable: true})

	toolchain, err := factory.HostToolchain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toolchain.Name() != "second" {
		t.Fatalf("expected second, got %s", toolchain.Name())
	}
}

func TestHostToolchainNoneUsable(t *testing.T) {
	factory := &ToolchainFactory{}
	factory.Register(&fakeToolchain{name: "only", usable: false})

	if _, err := factory.HostToolchain(); err == nil {
		t.Fatal("expected error when no toolchain is usable")
	}
}

func TestListToolchainsReturnsCopy(t *testing.T) {
	factory := &ToolchainFactory{}
	factory.Register(&fakeToolchain{name: "a", usable: true})

	list := factory.ListToolchains()
	list[0] = &fakeToolchain{name: "tampered"}

	if factory.ListToolchains()[0].Name() != "a" {
		t.Fatal("mutating the returned slice affected the factory")
	}
}

func TestBuildAllStepsEmptyPlan(t *testing.T) {
	factory := NewToolchainFactory()

	results, err := factory.BuildAllSteps(context.Background(), &BuildConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results for empty plan, got %v", results)
	}
}

func TestBuildAllStepsSuccess(t *testing.T) {
	tc := &fakeToolchain{name: "fake", usable: true}
	factory := &ToolchainFactory{}
	factory.Register(tc)

	steps := []*Step{
		{Name: "one", Sources: []string{"a.c"}, Archive: "one"},
		{Name: "two", Sources: []string{"b.c"}, Archive: "two"},
	}

	results, err := factory.BuildAllSteps(context.Background(), &BuildConfig{}, steps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, result := range results {
		if !result.Success {
			t.Fatalf("step %d failed: %v", i, result.Error)
		}
	}
	if tc.builds != 2 {
		t.Fatalf("expected 2 builds, got %d", tc.builds)
	}
}

func TestBuildAllStepsStopOnFailure(t *testing.T) {
	failure := errors.New("boom")
	tc := &fakeToolchain{name: "fake", usable: true, failWith: failure}
	factory := &ToolchainFactory{}
	factory.Register(tc)

	steps := []*Step{
		{Name: "one", Sources: []string{"a.c"}, Archive: "one"},
		{Name: "two", Sources: []string{"b.c"}, Archive: "two"},
	}

	config := &BuildConfig{StopOnFailure: true}
	results, err := factory.BuildAllSteps(context.Background(), config, steps)

	if !errors.Is(err, failure) {
		t.Fatalf("expected the build error, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected processing to stop after the first failure, got %d results", len(results))
	}
	if tc.builds != 1 {
		t.Fatalf("expected 1 build attempt, got %d", tc.builds)
	}
}

func TestBuildAllStepsContinuesWithoutStopOnFailure(t *testing.T) {
	failure := errors.New("boom")
	tc := &fakeToolchain{name: "fake", usable: true, failWith: failure}
	factory := &ToolchainFactory{}
	factory.Register(tc)

	steps := []*Step{
		{Name: "one", Sources: []string{"a.c"}, Archive: "one"},
		{Name: "two", Sources: []string{"b.c"}, Archive: "two"},
	}

	results, err := factory.BuildAllSteps(context.Background(), &BuildConfig{}, steps)

	if !errors.Is(err, failure) {
		t.Fatalf("expected the first build error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected all steps processed, got %d results", len(results))
	}
}

func TestBuildAllStepsCanceledContext(t *testing.T) {
	tc := &fakeToolchain{name: "fake", usable: true}
	factory := &ToolchainFactory{}
	factory.Register(tc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps := []*Step{{Name: "one", Sources: []string{"a.c"}, Archive: "one"}}
	results, err := factory.BuildAllSteps(ctx, &BuildConfig{}, steps)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected a single failed result, got %v", results)
	}
	if tc.builds != 0 {
		t.Fatalf("expected no builds after cancellation, got %d", tc.builds)
	}
}
