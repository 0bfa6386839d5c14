/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import (
	"github.com/josephgoksu/taskgraph/cmd"
	"github.com/josephgoksu/taskgraph/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
