package main

import "github.com/shaharia-lab/formrelay/cmd"

func main() {
	cmd.Execute()
}
