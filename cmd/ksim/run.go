package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aroesz98/crtos-go/kernel"
)

var runOpts = struct {
	config   string
	duration time.Duration
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the kernel from a BootConfig and report core load",
	Run: func(cmd *cobra.Command, args []string) {
		if len(runOpts.config) == 0 {
			println("no config file specified.")
			println("Example:")
			println(`--config boot.yaml`)
			cmd.Help()
			return
		}

		cfg, err := kernel.LoadBootConfig(runOpts.config)
		if err != nil {
			fmt.Println("run error:", err)
			return
		}

		k := kernel.New()
		if res := cfg.Apply(k); !res.OK() {
			fmt.Println("run error: apply boot config:", res)
			return
		}

		idleTask := func(any) {}
		if _, res := k.CreateTask(idleTask, "app", 512, nil, 1); !res.OK() {
			fmt.Println("run error: create task:", res)
			return
		}

		go k.Start()
		time.Sleep(runOpts.duration)

		load, mantissa := k.CoreLoad()
		fmt.Printf("core load: %d.%02d%%\n", load, mantissa)
		fmt.Printf("free bytes: %d  allocated bytes: %d\n", k.FreeBytes(), k.AllocatedBytes())
		fmt.Printf("mean switch latency: %.1f\n", k.Metrics().MeanLatency())
		fmt.Printf("p99 switch latency: %.1f\n", k.Metrics().LatencyQuantile(0.99))
		fmt.Printf("tasks: %v\n", k.TaskNames())
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOpts.config, "config", "c", "", "boot config YAML file")
	runCmd.Flags().DurationVarP(&runOpts.duration, "duration", "d", time.Second, "how long to let the simulation run")
}
