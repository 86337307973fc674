package main

import "github.com/geomodel-archive/gochk3d/gochk3d/cmd"

func main() {
	cmd.Execute()
}
