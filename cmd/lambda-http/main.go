package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"diabetes-backend/internal/bootstrap"
	"diabetes-backend/internal/shared/config"
	"diabetes-backend/internal/shared/telemetry"
)

type handlerFunc func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// newHandler builds the app once per cold start. A failed build answers
// every invocation with 500 so the function stays observable.
func newHandler(ctx context.Context) handlerFunc {
	app, err := bootstrap.Build(ctx, config.Load())
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err})
		return func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       `{"success":false,"error":"service unavailable"}`,
				Headers:    map[string]string{"Content-Type": "application/json"},
			}, nil
		}
	}
	adapter := ginadapter.NewV2(app.Router)
	return adapter.ProxyWithContext
}

func main() {
	lambda.Start(newHandler(context.Background()))
}
