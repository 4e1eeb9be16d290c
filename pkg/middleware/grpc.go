package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// UnaryServerInterceptor records every unary call with mechanism "grpc"
func (m *RequestMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.record(m.grpcLabels(info.FullMethod, err), time.Since(start))
		return resp, err
	}
}

// StreamServerInterceptor records every stream once it completes
func (m *RequestMetrics) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		m.record(m.grpcLabels(info.FullMethod, err), time.Since(start))
		return err
	}
}

func (m *RequestMetrics) grpcLabels(fullMethod string, err error) metrics.Labels {
	code := status.Code(err)

	labels := metrics.RequestLabels{
		Status:      metrics.StatusFromError(err),
		Mechanism:   metrics.MechanismGRPC,
		Source:      m.config.Source,
		Destination: m.config.Destination,
		Route:       fullMethod,
	}.Labels()

	// OK is code 0, which the typed builder treats as absent
	labels[metrics.LabelStatusCode] = int(code)
	if err != nil {
		labels[metrics.LabelErrorType] = code.String()
	}
	return labels
}
