package main

import "github.com/nordviken/onboarding-backend/cmd"

func main() {
	cmd.Init()
}
