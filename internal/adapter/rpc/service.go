package rpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/assembler"
	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"
	"github.com/Wesley-Jzy/fasttext-serving/internal/usecase"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "fasttext_serving.FasttextServing"

// Full method names
const (
	PredictMethod        = "/" + ServiceName + "/Predict"
	SentenceVectorMethod = "/" + ServiceName + "/SentenceVector"
)

// FasttextServingServer is the server API of the inference service.
// Both methods are client streaming: the client sends any number of
// requests and receives one response once it closes its side.
type FasttextServingServer interface {
	Predict(stream grpc.ServerStream) error
	SentenceVector(stream grpc.ServerStream) error
}

// ServiceDesc describes the inference service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FasttextServingServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Predict",
			Handler:       predictHandler,
			ClientStreams: true,
		},
		{
			StreamName:    "SentenceVector",
			Handler:       sentenceVectorHandler,
			ClientStreams: true,
		},
	},
	Metadata: "fasttext_serving.proto",
}

func predictHandler(srv any, stream grpc.ServerStream) error {
	return srv.(FasttextServingServer).Predict(stream)
}

func sentenceVectorHandler(srv any, stream grpc.ServerStream) error {
	return srv.(FasttextServingServer).SentenceVector(stream)
}

// Service implements FasttextServingServer on top of the prediction usecase
type Service struct {
	usecase   usecase.PredictionUsecase
	assembler *assembler.Assembler
	logger    *zap.Logger
}

var _ FasttextServingServer = (*Service)(nil)

// NewService creates the inference service.
// fallbackDim is the length of the zero vector returned for a failed embedding.
func NewService(uc usecase.PredictionUsecase, fallbackDim int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		usecase:   uc,
		assembler: assembler.New(assembler.GRPCFallbackLabel, fallbackDim),
		logger:    logger,
	}
}

// Predict classifies every text of the stream in arrival order
func (s *Service) Predict(stream grpc.ServerStream) error {
	outcomes, _, err := s.usecase.PredictStream(stream.Context(), func() (entity.PredictionItem, error) {
		var req PredictRequest
		if err := stream.RecvMsg(&req); err != nil {
			return entity.PredictionItem{}, err
		}
		return req.item(), nil
	})
	if err != nil {
		s.logger.Warn("Predict stream aborted", zap.Error(err))
		return streamError(err)
	}

	predictions := s.assembler.Predictions(outcomes)
	resp := &PredictResponse{Predictions: make([]Prediction, len(predictions))}
	for i, p := range predictions {
		resp.Predictions[i] = Prediction{Labels: p.Labels, Probs: p.Probabilities}
	}
	return stream.SendMsg(resp)
}

// SentenceVector embeds every text of the stream in arrival order
func (s *Service) SentenceVector(stream grpc.ServerStream) error {
	outcomes, _, err := s.usecase.EmbedStream(stream.Context(), func() (string, error) {
		var req SentenceVectorRequest
		if err := stream.RecvMsg(&req); err != nil {
			return "", err
		}
		return req.Text, nil
	})
	if err != nil {
		s.logger.Warn("SentenceVector stream aborted", zap.Error(err))
		return streamError(err)
	}

	vectors := s.assembler.Embeddings(outcomes)
	resp := &SentenceVectorResponse{Vectors: make([]Vector, len(vectors))}
	for i, v := range vectors {
		resp.Vectors[i] = Vector{Values: v}
	}
	return stream.SendMsg(resp)
}

// streamError gives an abandoned batch the status code of its context.
// Receive errors already carry a status and pass through.
func streamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return err
}
