package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/rpc"
)

func predictFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "target",
			Usage: "gRPC server address, host:port or unix:/path/to.sock",
			Value: "127.0.0.1:8000",
		},
		&cli.UintFlag{
			Name:  "k",
			Usage: "number of labels per text",
		},
		&cli.FloatFlag{
			Name:  "threshold",
			Usage: "minimum label probability",
		},
		&cli.BoolFlag{
			Name:  "vector",
			Usage: "request sentence vectors instead of labels",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "request timeout",
			Value: 30 * time.Second,
		},
	}
}

func predictAction(ctx context.Context, cmd *cli.Command) error {
	texts := cmd.Args().Slice()
	if len(texts) == 0 {
		return errors.New("at least one text is required")
	}

	conn, err := grpc.NewClient(cmd.String("target"), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to create gRPC client: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	c := rpc.NewClient(conn)
	var resp any
	if cmd.Bool("vector") {
		resp, err = c.SentenceVector(ctx, sentenceVectorRequests(texts))
	} else {
		resp, err = c.Predict(ctx, predictRequests(cmd, texts))
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func predictRequests(cmd *cli.Command, texts []string) []*rpc.PredictRequest {
	var k *uint32
	if cmd.IsSet("k") {
		v := uint32(cmd.Uint("k"))
		k = &v
	}
	var threshold *float32
	if cmd.IsSet("threshold") {
		v := float32(cmd.Float("threshold"))
		threshold = &v
	}

	reqs := make([]*rpc.PredictRequest, len(texts))
	for i, text := range texts {
		reqs[i] = &rpc.PredictRequest{Text: text, K: k, Threshold: threshold}
	}
	return reqs
}

func sentenceVectorRequests(texts []string) []*rpc.SentenceVectorRequest {
	reqs := make([]*rpc.SentenceVectorRequest, len(texts))
	for i, text := range texts {
		reqs[i] = &rpc.SentenceVectorRequest{Text: text}
	}
	return reqs
}
