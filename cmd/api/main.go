package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jun/gophdrive/gateway/internal/app"
	"github.com/jun/gophdrive/gateway/internal/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("[api] load config: %v", err)
	}
	application, err := app.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[api] init: %v", err)
	}
	lambda.Start(application.HandleRequest)
}
