package main

import (
	"chirp8/cmd"

	"github.com/faiface/pixel/pixelgl"
)

func main() {
	// pixelgl owns the main OS thread; everything else runs inside it
	pixelgl.Run(cmd.Execute)
}
