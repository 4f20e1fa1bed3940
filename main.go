package main

import "github.com/jsphweid/midifile/cmd"

func main() {
	cmd.Execute()
}
