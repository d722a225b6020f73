package staticlib

import (
	"context"
	"fmt"
)

// ToolchainFactory manages the registration and selection of toolchains.
//
// The factory maintains a registry of Toolchain implementations and
// provides methods to:
//   - Register new toolchains
//   - Find a toolchain usable on the current host
//   - Build a whole plan of steps in sequence
//
// # Toolchain Selection
//
// When building, the factory calls CanBuild() on each registered
// toolchain in order and uses the first one that reports true. An error
// is returned if no toolchain is usable on the host.
//
// # Thread Safety
//
// ToolchainFactory is NOT thread-safe for registration. Register all
// toolchains before concurrent use. After registration, read operations
// (HostToolchain, BuildAllSteps) are safe.
type ToolchainFactory struct {
	toolchains []Toolchain
}

// NewToolchainFactory creates a factory with the standard toolchains
// registered.
//
// The standard toolchains are registered in this order:
//  1. MSVCToolchain - cl.exe + lib.exe (Windows hosts)
//  2. GNUToolchain - cc/gcc/clang + ar
//
// MSVC is registered first so Windows hosts with both cl and a MinGW cc
// prefer the native toolchain. On other platforms MSVC never reports
// CanBuild and the GNU toolchain is selected.
func NewToolchainFactory() *ToolchainFactory {
	factory := &ToolchainFactory{}

	factory.Register(&MSVCToolchain{})
	factory.Register(&GNUToolchain{})

	return factory
}

// Register adds a toolchain to the factory.
//
// Toolchains are checked in the order they are registered. If multiple
// toolchains are usable on the host, the first registered one wins.
//
// Not thread-safe. Register all toolchains before concurrent use.
func (f *ToolchainFactory) Register(toolchain Toolchain) {
	f.toolchains = append(f.toolchains, toolchain)
}

// HostToolchain returns the first registered toolchain usable on the
// current host, or an error if none is.
func (f *ToolchainFactory) HostToolchain() (Toolchain, error) {
	for _, toolchain := range f.toolchains {
		if toolchain.CanBuild() {
			return toolchain, nil
		}
	}

	return nil, fmt.Errorf("no usable C toolchain found on this host")
}

// ListToolchains returns a copy of all registered toolchains.
//
// The returned slice is a copy and can be modified without affecting
// the factory's internal state.
func (f *ToolchainFactory) ListToolchains() []Toolchain {
	return append([]Toolchain{}, f.toolchains...)
}

// BuildAllSteps builds every step of a plan in sequence.
//
// Each step is processed in order:
//  1. Check for context cancellation
//  2. Find a usable toolchain
//  3. Build the step
//  4. Collect the result
//  5. Stop on first failure if config.StopOnFailure is true
//
// Returns one BuildResult per processed step and the first error
// encountered, if any. Even when an error is returned, the results
// slice contains partial results for the steps that ran.
//
// If the context is canceled during processing, a BuildResult carrying
// the context error is appended and processing stops immediately.
func (f *ToolchainFactory) BuildAllSteps(ctx context.Context, config *BuildConfig, steps []*Step) ([]*BuildResult, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	var results []*BuildResult
	var firstError error

	for _, step := range steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if firstError == nil {
				firstError = ctxErr
			}
			results = append(results, &BuildResult{
				Success: false,
				Error:   ctxErr,
			})
			break
		}

		toolchain, err := f.HostToolchain()
		if err != nil {
			if firstError == nil {
				firstError = err
			}
			results = append(results, &BuildResult{
				Success: false,
				Error:   err,
			})
			if config.StopOnFailure {
				break
			}
			continue
		}

		result, err := toolchain.Build(ctx, config, step)
		if err != nil {
			if firstError == nil {
				firstError = err
			}
			// Ensure we have a result even if the toolchain didn't return one
			if result == nil {
				result = &BuildResult{
					Success: false,
					Error:   err,
				}
			}
		}

		results = append(results, result)

		if !result.Success && config.StopOnFailure {
			break
		}
	}

	return results, firstError
}
