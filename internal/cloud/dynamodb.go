package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

// queryAPI is the part of the DynamoDB client the device table uses.
type queryAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DeviceTable reads caller-to-device assignments from a DynamoDB table
// keyed by userId (partition) and deviceSerial (sort).
type DeviceTable struct {
	svc   queryAPI
	table string
}

// NewDeviceTable loads the AWS configuration from the environment and
// shared credentials.
func NewDeviceTable(ctx context.Context, region, table string) (*DeviceTable, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &DeviceTable{svc: dynamodb.NewFromConfig(cfg), table: table}, nil
}

// DeviceItem is the stored shape of one assignment.
type DeviceItem struct {
	UserID       string `dynamodbav:"userId"`
	DeviceSerial string `dynamodbav:"deviceSerial"`
	DeviceName   string `dynamodbav:"deviceName"`
}

// DevicesFor queries every page of the caller's partition.
func (t *DeviceTable) DevicesFor(ctx context.Context, callerID string) ([]domain.DeviceInfo, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(t.table),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: callerID},
		},
	}

	var out []domain.DeviceInfo
	for {
		result, err := t.svc.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query device table: %w", err)
		}

		var items []DeviceItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal devices: %w", err)
		}
		for _, it := range items {
			name := it.DeviceName
			if name == "" {
				name = it.DeviceSerial
			}
			out = append(out, domain.DeviceInfo{DeviceSerial: it.DeviceSerial, Name: name})
		}

		if len(result.LastEvaluatedKey) == 0 {
			return out, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}
