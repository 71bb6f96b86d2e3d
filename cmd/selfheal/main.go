// Command selfheal resolves browser element locators with self-healing.
package main

import "github.com/devicelab-dev/selfheal/pkg/cli"

func main() {
	cli.Execute()
}
