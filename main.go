package main

import "github.com/adiwardana/commerce/cmd"

func main() {
	cmd.Start()
}
