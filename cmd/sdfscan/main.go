package main

import "github.com/OpenTraceLab/OpenTraceSDF/cmd/sdfscan/cmd"

func main() {
	cmd.Execute()
}
