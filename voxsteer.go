package main

import (
	cli "github.com/steerlab/voxsteer/cmd/voxsteer"
)

func main() {
	cli.Execute()
}
