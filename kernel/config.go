package kernel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BootConfig is a declarative description of the kernel parameters that
// must be set before Start: core clock, tick rate, and the memory pool
// size to carve out for InitMemory. It supplements the original's
// Config namespace, which only exposed these as individual imperative
// calls, with a single YAML document a host program can load once.
type BootConfig struct {
	CoreClockHz uint32 `yaml:"core_clock_hz"`
	TickRateHz  uint32 `yaml:"tick_rate_hz"`
	PoolBytes   uint32 `yaml:"pool_bytes"`
}

// LoadBootConfig reads and parses a BootConfig from a YAML file.
func LoadBootConfig(path string) (*BootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kernel: read boot config: %w", err)
	}
	var cfg BootConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("kernel: parse boot config: %w", err)
	}
	return &cfg, nil
}

// Apply runs SetCoreClock, SetTickRate, and InitMemory (over a
// freshly allocated pool of PoolBytes) against k, in that order, stopping
// at the first failure.
func (cfg *BootConfig) Apply(k *Kernel) Result {
	if res := k.SetCoreClock(cfg.CoreClockHz); !res.OK() {
		return res
	}
	if res := k.SetTickRate(cfg.TickRateHz); !res.OK() {
		return res
	}
	if cfg.PoolBytes == 0 {
		return ResultBadParameter
	}
	return k.InitMemory(make([]byte, cfg.PoolBytes))
}
