package main

import (
	"textops/cmd"
	"textops/logging"
)

func main() {
	logging.InitFromEnv()
	cmd.Execute()
}
