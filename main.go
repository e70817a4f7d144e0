// Package main is the entry point for the pipcheck CLI.
package main

import "github.com/ajxudir/pipcheck/cmd"

func main() {
	cmd.Execute()
}
