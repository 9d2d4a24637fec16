package observability

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client used for metrics
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes application metrics to CloudWatch. A nil client turns
// every call into a no-op. Publishing failures are logged, never returned.
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
	now       func() time.Time
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordCommandExecution records duration and count of a command execution
func (m *Metrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	dims := dimensions(map[string]string{"CommandName": commandName, "Status": status})

	m.put(ctx,
		types.MetricDatum{
			MetricName: aws.String("CommandExecution"),
			Dimensions: dims,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
		},
		types.MetricDatum{
			MetricName: aws.String("CommandCount"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
		},
	)
}

// RecordBusinessMetric records a counted business event such as a commit or
// a certification.
func (m *Metrics) RecordBusinessMetric(ctx context.Context, name string, value float64, dims map[string]string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dimensions(dims),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
	})
}

// RecordError records an error occurrence
func (m *Metrics) RecordError(ctx context.Context, errorType, errorCode string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("Errors"),
		Dimensions: dimensions(map[string]string{"ErrorType": errorType, "ErrorCode": errorCode}),
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
	})
}

func (m *Metrics) put(ctx context.Context, data ...types.MetricDatum) {
	if m.client == nil {
		return
	}

	ts := m.now()
	for i := range data {
		data[i].Timestamp = aws.Time(ts)
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("Failed to send metrics",
			zap.String("metric", aws.ToString(data[0].MetricName)),
			zap.Error(err),
		)
	}
}

// dimensions converts a map into CloudWatch dimensions sorted by name.
func dimensions(dims map[string]string) []types.Dimension {
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.Dimension, 0, len(names))
	for _, name := range names {
		out = append(out, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(dims[name]),
		})
	}
	return out
}
