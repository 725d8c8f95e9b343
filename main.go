package main

import "github.com/teryaq/pharmacy-backend/cmd"

func main() {
	cmd.Execute()
}
