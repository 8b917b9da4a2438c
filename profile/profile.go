// Package profile wires [runtime/pprof] profiling behind CLI flags, for
// diagnosing long schema assembly and compilation runs.
//
// A zero-value [Config] has all profiles disabled. Create a [Profiler] with
// [Config.NewProfiler], call [Profiler.Start] before the work and
// [Profiler.Stop] after it to write the enabled profiles.
package profile

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration.
type Flags struct {
	CPUProfile  string
	HeapProfile string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds profile output paths; an empty path disables that profile.
type Config struct {
	Flags Flags

	CPUProfile  string
	HeapProfile string
}

// NewConfig creates a [Config] with default flag names and all profiles
// disabled.
func NewConfig() *Config {
	f := Flags{
		CPUProfile:  "cpu-profile",
		HeapProfile: "heap-profile",
	}

	return f.NewConfig()
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet] and
// hides them; they are operator tooling, not part of the command surface.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, c.Flags.CPUProfile, "",
		"write a CPU profile to this path")
	flags.StringVar(&c.HeapProfile, c.Flags.HeapProfile, "",
		"write a heap profile to this path on exit")

	for _, name := range []string{c.Flags.CPUProfile, c.Flags.HeapProfile} {
		if f := flags.Lookup(name); f != nil {
			f.Hidden = true
		}
	}
}

// NewProfiler creates a [Profiler] using this configuration.
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{Config: *c}
}

// Profiler controls the lifecycle of one profiling session.
type Profiler struct {
	cpuFile *os.File
	Config
}

// Start begins CPU profiling if enabled. Call [Profiler.Stop] when the work
// is complete to write snapshot profiles.
func (p *Profiler) Start() error {
	if p.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.CPUProfile)
	if err != nil {
		return fmt.Errorf("creating CPU profile: %w", err)
	}

	p.cpuFile = f

	err = pprof.StartCPUProfile(f)
	if err != nil {
		_ = p.cpuFile.Close()
		p.cpuFile = nil

		return fmt.Errorf("starting CPU profile: %w", err)
	}

	return nil
}

// Stop stops CPU profiling and writes the heap snapshot if enabled.
func (p *Profiler) Stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			return fmt.Errorf("closing CPU profile: %w", err)
		}

		p.cpuFile = nil
	}

	if p.HeapProfile == "" {
		return nil
	}

	f, err := os.Create(p.HeapProfile)
	if err != nil {
		return fmt.Errorf("creating heap profile: %w", err)
	}
	defer f.Close()

	err = pprof.Lookup("heap").WriteTo(f, 0)
	if err != nil {
		return fmt.Errorf("writing heap profile: %w", err)
	}

	return nil
}
