package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lendline/delinq/internal/commands"
)

func main() {
	// .env is optional; environment variables win over delinq.yaml either way.
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
