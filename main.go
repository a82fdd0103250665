package main

import "kaizoku/cmd"

func main() {
	cmd.Execute()
}
