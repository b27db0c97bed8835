package main

import (
	"github.com/josephgoksu/chorepay/cmd"
	"github.com/josephgoksu/chorepay/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
