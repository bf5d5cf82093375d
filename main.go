package main

import "github.com/yeremiapane/food-delivery/cmd"

func main() {
	cmd.Execute()
}
