package main

import "github.com/kpn-dsh/dsh-cli-sub001/cmd"

func main() {
	cmd.Execute()
}
