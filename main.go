package main

import "github.com/Alijeyrad/clinicbook/cmd"

func main() {
	cmd.Execute()
}
