package logging

import (
	"log"

	"go.uber.org/zap"
)

// L is a no-op until Init is called from main; tests run against the no-op.
var L = zap.NewNop()

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	L = logger
}

func Sync() {
	if L != nil {
		L.Sync()
	}
}
