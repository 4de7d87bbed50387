// Command planinfo reports transform buffer sizing, self-checks the
// available engine backends and prints the dominant bins of a WAV file.
//
// Usage:
//
//	planinfo [flags] sizes N...
//	planinfo [flags] check N...
//	planinfo [flags] spectrum [--size N] [--top K] FILE.wav
//
// Examples:
//
//	planinfo sizes 8 9 1024
//	planinfo --backend algofft --effort measure check 64 256
//	planinfo spectrum --size 4096 --top 4 take1.wav
//	FFTPLAN_ENGINE__BACKEND=algofft planinfo check 16
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
