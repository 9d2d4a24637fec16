package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"seds-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventBridge struct {
	inputs []*eventbridge.PutEventsInput
	output *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.output != nil {
		return f.output, f.err
	}
	return &eventbridge.PutEventsOutput{}, f.err
}

var ts = time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)

func TestPublishUncertified(t *testing.T) {
	client := &fakeEventBridge{}
	p := NewPublisher(client, "main-seds-events", zap.NewNop())

	err := p.Publish(context.Background(), events.NewFormUncertified("AL-2021-1-21E", "jdoe", "AL", "state", "jdoe@al.gov", ts))

	require.NoError(t, err)
	require.Len(t, client.inputs, 1)
	entry := client.inputs[0].Entries[0]
	assert.Equal(t, "main-seds-events", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceSEDS, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeFormUncertified, aws.ToString(entry.DetailType))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "jdoe", detail["username"])
	assert.Equal(t, "AL", detail["state"])
	assert.Equal(t, "jdoe@al.gov", detail["email"])
}

func TestPublishBatchSplitsIntoTens(t *testing.T) {
	client := &fakeEventBridge{}
	p := NewPublisher(client, "bus", zap.NewNop())

	batch := make([]events.DomainEvent, 23)
	for i := range batch {
		batch[i] = events.NewAnswerUpdated("AL-2021-1-21E", "AL-2021-1-21E-0105-01", "jdoe", ts)
	}

	require.NoError(t, p.PublishBatch(context.Background(), batch))
	require.Len(t, client.inputs, 3)
	assert.Len(t, client.inputs[0].Entries, 10)
	assert.Len(t, client.inputs[1].Entries, 10)
	assert.Len(t, client.inputs[2].Entries, 3)
}

func TestPublishFailures(t *testing.T) {
	event := events.NewAnswerUpdated("AL-2021-1-21E", "AL-2021-1-21E-0105-01", "jdoe", ts)

	client := &fakeEventBridge{err: errors.New("access denied")}
	p := NewPublisher(client, "bus", zap.NewNop())
	assert.ErrorContains(t, p.Publish(context.Background(), event), "access denied")

	client = &fakeEventBridge{output: &eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
	}}
	p = NewPublisher(client, "bus", zap.NewNop())
	assert.EqualError(t, p.Publish(context.Background(), event), "1 events failed to publish")

	assert.NoError(t, p.PublishBatch(context.Background(), nil))
}
