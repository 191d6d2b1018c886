package main

import "github.com/frahmantamala/meeting-manager/cmd"

func main() {
	cmd.Execute()
}
