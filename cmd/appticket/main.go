package main

import "github.com/connesc/appticket/internal/cmd"

func main() {
	cmd.Execute()
}
