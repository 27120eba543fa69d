package main

import (
	"context"
	"net/http"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/config"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/handlers"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/pkg/lambda"
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// fail the cold start on bad configuration rather than every request
	if err := lambda.GetContainerManager().Initialize(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
}

func handleUsers(ctx context.Context, req *lambda.Request) *lambda.Response {
	container, err := lambda.GetContainerManager().GetContainer(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to get container")
		return &lambda.Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "text/plain"},
			Body:       []byte("Error: " + err.Error()),
		}
	}

	userHandler := handlers.NewUserHandler(container.Connector, container.Services, container.Metrics, container.Logger)
	return userHandler.Handle(ctx, req)
}

func main() {
	manager := lambda.GetContainerManager()
	awslambda.StartWithOptions(
		lambda.EventHandler(handleUsers),
		awslambda.WithEnableSIGTERM(func() {
			if err := manager.Cleanup(); err != nil {
				logrus.WithError(err).Error("Failed to clean up container")
			}
		}),
	)
}
