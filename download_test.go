package copytables

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seldebrings/sls-copy-stack-tables/internal/testutil"
)

func TestCopier_Scan(t *testing.T) {
	page := func(id string, next bool) *dynamodb.ScanOutput {
		out := &dynamodb.ScanOutput{
			Items: []map[string]types.AttributeValue{
				{"id": &types.AttributeValueMemberS{Value: id}},
			},
		}
		if next {
			out.LastEvaluatedKey = map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
		}
		return out
	}

	tests := []struct {
		name       string
		options    []Option
		wantItems  int
		wantCalls  int
		consistent bool
	}{
		{"paginated", nil, 3, 3, false},
		{"single page", []Option{WithSinglePageScan()}, 1, 1, false},
		{"consistent", []Option{WithConsistentScan()}, 3, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inputs []*dynamodb.ScanInput
			mock := &testutil.MockDynamoDBClient{
				ScanFunc: func(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
					inputs = append(inputs, in)
					switch len(inputs) {
					case 1:
						return page("a", true), nil
					case 2:
						return page("b", true), nil
					default:
						return page("c", false), nil
					}
				},
			}

			records, err := NewWithClient(mock, tt.options...).scan(context.Background(), "users-dev")
			require.NoError(t, err)

			assert.Len(t, records, tt.wantItems)
			require.Len(t, inputs, tt.wantCalls)
			for _, in := range inputs {
				assert.Equal(t, "users-dev", aws.ToString(in.TableName))
				assert.Equal(t, tt.consistent, aws.ToBool(in.ConsistentRead))
			}
			if tt.wantCalls > 1 {
				assert.Equal(t, "a", testutil.StringAttr(inputs[1].ExclusiveStartKey, "id"))
			}
		})
	}
}

func TestCopier_ResolveKeys_EmptyDescription(t *testing.T) {
	mock := &testutil.MockDynamoDBClient{}
	cc := newCopyContext(usersRequest(false))

	err := NewWithClient(mock).resolveKeys(context.Background(), NewWithClient(mock).logger, cc, fromSource)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Users-dev")
}
