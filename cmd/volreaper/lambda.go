package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/inconshreveable/log15"
	"github.com/younsl/volreaper/internal/config"
)

// Response is returned to the Lambda runtime after each invocation
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// event carries an optional pass override; any other payload is ignored
type event struct {
	Mode string `json:"mode"`
}

// passFunc runs one pass and returns a short summary
type passFunc func(ctx context.Context, mode string) (string, error)

// newHandler returns the Lambda handler. Failures are reported in the
// response rather than as invocation errors.
func newHandler(defaultMode string, log log15.Logger, run passFunc) func(context.Context, json.RawMessage) (Response, error) {
	return func(ctx context.Context, payload json.RawMessage) (Response, error) {
		mode := defaultMode
		var ev event
		if err := json.Unmarshal(payload, &ev); err == nil && (ev.Mode == modeCollect || ev.Mode == modeEnforce) {
			mode = ev.Mode
		}

		log := log.New("mode", mode)
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			log = log.New("request_id", lc.AwsRequestID)
		}

		summary, err := run(ctx, mode)
		if err != nil {
			log.Error("pass failed", "error", err)
			return Response{StatusCode: http.StatusInternalServerError, Body: fmt.Sprintf("%s failed: %v", mode, err)}, nil
		}
		log.Info("pass succeeded", "summary", summary)
		return Response{StatusCode: http.StatusOK, Body: summary}, nil
	}
}

func startLambda(cfg *config.Config, mode string) error {
	r, err := newRunner(cfg, os.Stdout)
	if err != nil {
		return err
	}

	run := func(ctx context.Context, mode string) (string, error) {
		switch mode {
		case modeEnforce:
			if err := cfg.ValidateForEnforce(); err != nil {
				return "", err
			}
			result, err := r.enforce(ctx)
			if err != nil {
				return "", err
			}
			return result.Message, nil
		default:
			if err := cfg.Validate(); err != nil {
				return "", err
			}
			result, err := r.collect(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Report %s written with %d volumes", result.ReportKey, len(result.Rows)), nil
		}
	}

	lambda.Start(newHandler(mode, r.log, run))
	return nil
}
