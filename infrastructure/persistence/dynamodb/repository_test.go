package dynamodb

import (
	"context"
	"errors"
	"testing"

	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/grid"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient serves canned pages and records the requests it receives.
type fakeClient struct {
	getItems   map[string]map[string]types.AttributeValue
	pages      [][]map[string]types.AttributeValue
	putErrs    []error
	updateErr  error
	queries    []*dynamodb.QueryInput
	scans      []*dynamodb.ScanInput
	puts       []*dynamodb.PutItemInput
	updates    []*dynamodb.UpdateItemInput
	deletes    []*dynamodb.DeleteItemInput
	deleted    map[string]types.AttributeValue
	deleteErr  error
	scanCursor int
}

func (f *fakeClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	for _, v := range in.Key {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			return &dynamodb.GetItemOutput{Item: f.getItems[s.Value]}, nil
		}
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		return nil, err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &dynamodb.DeleteItemOutput{Attributes: f.deleted}, nil
}

func (f *fakeClient) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	var items []map[string]types.AttributeValue
	if len(f.pages) > 0 {
		items = f.pages[0]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

// Scan returns one page per call, restarting for each new scan.
func (f *fakeClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	if in.ExclusiveStartKey == nil {
		f.scanCursor = 0
	}
	out := &dynamodb.ScanOutput{}
	if f.scanCursor < len(f.pages) {
		out.Items = f.pages[f.scanCursor]
	}
	f.scanCursor++
	if f.scanCursor < len(f.pages) {
		out.LastEvaluatedKey = stringKey("cursor", "next")
	}
	return out, nil
}

func marshal(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}

func TestAnswerRepositoryListByStateForm(t *testing.T) {
	record := entities.AnswerRecord{
		AnswerEntry: "AL-2021-1-21E-0105-01",
		StateForm:   "AL-2021-1-21E",
		Question:    "2021-21E-01",
		RangeID:     "0105",
		Rows: []grid.Row{
			{"col1": "", "col2": "% of FPL 0-133"},
			{"col1": "A. Fee-for-Service", "col2": nil},
		},
	}
	client := &fakeClient{pages: [][]map[string]types.AttributeValue{{marshal(t, record)}}}
	repo := NewAnswerRepository(client, "main-form-answers", "state-form-index", zap.NewNop())

	answers, err := repo.ListByStateForm(context.Background(), "AL-2021-1-21E")

	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, record.AnswerEntry, answers[0].AnswerEntry)
	assert.Nil(t, answers[0].Rows[1]["col2"])
	require.Len(t, client.queries, 1)
	assert.Equal(t, "state-form-index", aws.ToString(client.queries[0].IndexName))
}

func TestAnswerRepositorySave(t *testing.T) {
	client := &fakeClient{}
	repo := NewAnswerRepository(client, "main-form-answers", "state-form-index", zap.NewNop())

	err := repo.Save(context.Background(), entities.AnswerRecord{
		AnswerEntry:    "AL-2021-1-21E-0105-01",
		Rows:           []grid.Row{{"col1": "", "col2": "x"}},
		LastModified:   "2021-04-01T12:00:00Z",
		LastModifiedBy: "jdoe",
	})

	require.NoError(t, err)
	require.Len(t, client.updates, 1)
	in := client.updates[0]
	assert.Equal(t, &types.AttributeValueMemberS{Value: "AL-2021-1-21E-0105-01"}, in.Key["answer_entry"])
	assert.Contains(t, aws.ToString(in.ConditionExpression), "attribute_exists")

	client.updateErr = &types.ConditionalCheckFailedException{}
	err = repo.Save(context.Background(), entities.AnswerRecord{AnswerEntry: "AL-2021-1-21E-0105-99"})
	assert.ErrorIs(t, err, pkgerrors.ErrAnswerNotFound)

	client.updateErr = errors.New("throttled")
	err = repo.Save(context.Background(), entities.AnswerRecord{AnswerEntry: "AL-2021-1-21E-0105-01"})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestStateFormsWithAnswersPaginates(t *testing.T) {
	client := &fakeClient{pages: [][]map[string]types.AttributeValue{
		{marshal(t, map[string]string{"state_form": "AL-2021-1-21E"})},
		{marshal(t, map[string]string{"state_form": "MD-2021-1-21E"}), marshal(t, map[string]string{"state_form": "AL-2021-1-21E"})},
	}}
	repo := NewAnswerRepository(client, "main-form-answers", "state-form-index", zap.NewNop())

	set, err := repo.StateFormsWithAnswers(context.Background())

	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "MD-2021-1-21E")
	assert.Len(t, client.scans, 2)
}

func TestStateFormRepository(t *testing.T) {
	status := entities.FormStatus{StateForm: "AL-2021-1-21E", StatusID: entities.StatusIDInProgress, Status: entities.StatusInProgress}
	client := &fakeClient{getItems: map[string]map[string]types.AttributeValue{"AL-2021-1-21E": marshal(t, status)}}
	repo := NewStateFormRepository(client, "main-state-forms", zap.NewNop())

	got, err := repo.Get(context.Background(), "AL-2021-1-21E")
	require.NoError(t, err)
	assert.Equal(t, status, *got)

	_, err = repo.Get(context.Background(), "ZZ-2021-1-21E")
	assert.ErrorIs(t, err, pkgerrors.ErrFormNotFound)

	client.updateErr = &types.ConditionalCheckFailedException{}
	err = repo.SaveStatus(context.Background(), entities.FormStatus{StateForm: "ZZ-2021-1-21E"})
	assert.ErrorIs(t, err, pkgerrors.ErrFormNotFound)
}

func TestUserRepositoryCreate(t *testing.T) {
	client := &fakeClient{
		pages: [][]map[string]types.AttributeValue{{
			marshal(t, map[string]string{"userId": "2"}),
			marshal(t, map[string]string{"userId": "10"}),
			marshal(t, map[string]string{"userId": "x"}),
		}},
		putErrs: []error{&types.ConditionalCheckFailedException{}},
	}
	repo := NewUserRepository(client, "main-auth-user", zap.NewNop())

	user, err := repo.Create(context.Background(), entities.User{Username: "jdoe", States: []string{}})

	require.NoError(t, err)
	assert.Equal(t, "11", user.UserID)
	assert.Len(t, client.puts, 2)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "11"}, client.puts[1].Item["userId"])
}

func TestUserRepositoryLookups(t *testing.T) {
	client := &fakeClient{}
	repo := NewUserRepository(client, "main-auth-user", zap.NewNop())

	_, err := repo.GetBySub(context.Background(), "sub-1")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)

	_, err = repo.Get(context.Background(), "1")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)

	client.pages = [][]map[string]types.AttributeValue{{marshal(t, entities.User{UserID: "1", UsernameSub: "sub-1"})}}
	user, err := repo.GetBySub(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "1", user.UserID)
	assert.Contains(t, aws.ToString(client.scans[len(client.scans)-1].FilterExpression), "=")
}
