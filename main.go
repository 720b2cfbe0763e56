package main

import "github.com/frahmantamala/attendance/cmd"

func main() {
	cmd.Execute()
}
