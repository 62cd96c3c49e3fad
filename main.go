package main

import "github.com/ValentinKolb/flatmsg/cmd"

func main() {
	cmd.Execute()
}
