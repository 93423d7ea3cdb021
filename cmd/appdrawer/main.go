// Package main provides the CLI entrypoint for appdrawer.
package main

func main() {
	Execute()
}
