package main

import "hangout-backend/cmd"

func main() {
	cmd.Run()
}
