package main

import "github.com/tferrand/sleeve/internal/cmd"

func main() {
	cmd.Execute()
}
