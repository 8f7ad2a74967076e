package main

import "github.com/MachineKe/spa-console/cmd/spaconsole/cmd"

func main() {
	cmd.Execute()
}
