// Command ksim boots the crtos-go kernel inside a single host process and
// runs the scenarios the kernel's design was checked against, for
// inspection outside of `go test`.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
