package main

import "github.com/wkalt/msgdef/client/msgdef/cmd"

func main() {
	cmd.Execute()
}
