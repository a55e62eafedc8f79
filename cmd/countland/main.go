package main

import (
	"github.com/jpintar/countland/cmd/handlers"
	"github.com/jpintar/countland/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
