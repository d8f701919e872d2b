package main

import "github.com/lepinkainen/mylibrary/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
