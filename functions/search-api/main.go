package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/patentsearch"
	"github.com/letmevibethatforyou/patentsearch/uspto"
	"github.com/urfave/cli/v2"
)

// operationRequest is the JSON body accepted by the function.
type operationRequest struct {
	Operation patentsearch.Operation        `json:"operation"`
	Params    *patentsearch.OperationParams `json:"params,omitempty"`
}

type Handler struct {
	runner *patentsearch.Runner
}

func NewHandler(fetchSecrets uspto.FetchSecrets) *Handler {
	client := uspto.NewClient(fetchSecrets)
	return &Handler{
		runner: patentsearch.NewRunner(uspto.NewSearcher(client)),
	}
}

func (h *Handler) HandleRequest(ctx context.Context, e events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req operationRequest
	if err := json.Unmarshal([]byte(e.Body), &req); err != nil {
		slog.WarnContext(ctx, "Failed to parse request body", "error", err)
		return respond(http.StatusBadRequest, patentsearch.Failure("Invalid request body"))
	}

	if req.Operation == "fields" {
		// Metadata for building search UIs; no upstream call involved.
		return respond(http.StatusOK, map[string]interface{}{
			"success":       true,
			"search_types":  patentsearch.SearchTypes,
			"valid_fields":  patentsearch.ValidFields,
			"display_names": patentsearch.FieldDisplayNames,
			"operators":     patentsearch.BooleanOperators,
			"endpoints":     patentsearch.APIEndpoints,
		})
	}

	result := h.runner.Run(ctx, req.Operation, req.Params)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	return respond(status, result)
}

func respond(status int, body interface{}) (events.APIGatewayProxyResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"success":false,"error":"Failed to serialize response"}`,
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}, nil
}

func main() {
	app := &cli.App{
		Name:  "search-api",
		Usage: "Serve patent search operations behind API Gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over the API key flag)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "uspto-api-key",
				Usage:   "USPTO API key",
				EnvVars: []string{"USPTO_API_KEY"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	env := c.String("env")
	apiKey := c.String("uspto-api-key")

	slog.InfoContext(ctx, "Starting patent search API", "environment", env)

	var fetchSecrets uspto.FetchSecrets

	// Prioritize environment-based AWS Secrets Manager if env is provided
	if env != "" {
		slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load AWS config", "error", err)
			return err
		}

		client := secretsmanager.NewFromConfig(cfg)
		fetchSecrets = uspto.AWSSecrets(ctx, client, env)
	} else if apiKey != "" {
		slog.InfoContext(ctx, "Using static credentials from flags")
		fetchSecrets = uspto.StaticSecrets(apiKey)
	} else {
		slog.InfoContext(ctx, "Using environment variables for credentials")
		fetchSecrets = uspto.EnvSecrets()
	}

	handler := NewHandler(fetchSecrets)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleRequest)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
