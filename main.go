package main

import "tapp-club-backend/cmd"

func main() {
	cmd.Run()
}
