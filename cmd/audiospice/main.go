package main

import "github.com/edp1096/audio-spice/cmd/audiospice/cmd"

func main() {
	cmd.Execute()
}
