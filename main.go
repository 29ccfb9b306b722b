package main

import "finreport/cmd"

func main() {
	cmd.Execute()
}
