// Command promptkit stores and serves structured prompts for coding agents.
package main

import "github.com/mesh-intelligence/promptkit/internal/cli"

func main() {
	cli.Execute()
}
