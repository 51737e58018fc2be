package cloud

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

type fakeQuery struct {
	pages  []*dynamodb.QueryOutput
	inputs []*dynamodb.QueryInput
	err    error
}

func (f *fakeQuery) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	cp := *in
	f.inputs = append(f.inputs, &cp)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func items(t *testing.T, in ...DeviceItem) []map[string]types.AttributeValue {
	t.Helper()
	out := make([]map[string]types.AttributeValue, len(in))
	for i, it := range in {
		m, err := attributevalue.MarshalMap(it)
		require.NoError(t, err)
		out[i] = m
	}
	return out
}

func TestDeviceTablePaginates(t *testing.T) {
	lastKey := map[string]types.AttributeValue{
		"userId":       &types.AttributeValueMemberS{Value: "u1"},
		"deviceSerial": &types.AttributeValueMemberS{Value: "SA1"},
	}
	fake := &fakeQuery{pages: []*dynamodb.QueryOutput{
		{Items: items(t, DeviceItem{UserID: "u1", DeviceSerial: "SA1", DeviceName: "Kitchen"}), LastEvaluatedKey: lastKey},
		{Items: items(t, DeviceItem{UserID: "u1", DeviceSerial: "SA2"})},
	}}
	table := &DeviceTable{svc: fake, table: "UserDevices"}

	devices, err := table.DevicesFor(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []domain.DeviceInfo{
		{DeviceSerial: "SA1", Name: "Kitchen"},
		{DeviceSerial: "SA2", Name: "SA2"},
	}, devices)

	require.Len(t, fake.inputs, 2)
	require.Equal(t, "UserDevices", aws.ToString(fake.inputs[0].TableName))
	require.Nil(t, fake.inputs[0].ExclusiveStartKey)
	require.Equal(t, lastKey, fake.inputs[1].ExclusiveStartKey)
	uid := fake.inputs[0].ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS)
	require.Equal(t, "u1", uid.Value)
}

func TestDeviceTableQueryError(t *testing.T) {
	table := &DeviceTable{svc: &fakeQuery{err: errors.New("throttled")}, table: "UserDevices"}
	_, err := table.DevicesFor(context.Background(), "u1")
	require.ErrorContains(t, err, "failed to query device table")
}
