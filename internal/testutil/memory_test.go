package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDynamoDB_ScanPages(t *testing.T) {
	db := NewMemoryDynamoDB()
	db.CreateTable("users", "id", "")
	for _, u := range GenerateUsers("u", 5) {
		require.NoError(t, db.Seed("users", MarshalItem(t, u)))
	}
	db.PageSize = 2

	var ids []string
	p := dynamodb.NewScanPaginator(db, &dynamodb.ScanInput{TableName: aws.String("users")})
	pages := 0
	for p.HasMorePages() {
		page, err := p.NextPage(context.Background())
		require.NoError(t, err)
		pages++
		for _, item := range page.Items {
			ids = append(ids, StringAttr(item, "id"))
		}
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, []string{"u-000", "u-001", "u-002", "u-003", "u-004"}, ids)
	assert.Equal(t, 3, db.Calls(OpScan))
}

func TestMemoryDynamoDB_PutAndDelete(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDynamoDB()
	db.CreateTable("orders", "customerId", "orderId")

	order := MarshalItem(t, Order{CustomerID: "c-1", OrderID: "o-1", Total: 3})
	_, err := db.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String("orders"), Item: order})
	require.NoError(t, err)

	// same key replaces the item
	order2 := MarshalItem(t, Order{CustomerID: "c-1", OrderID: "o-1", Total: 7})
	_, err = db.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String("orders"), Item: order2})
	require.NoError(t, err)
	require.Len(t, db.Items("orders"), 1)

	_, err = db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String("orders"),
		Key:       map[string]types.AttributeValue{"customerId": order["customerId"]},
	})
	assert.Error(t, err, "partial key is rejected")

	_, err = db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String("orders"),
		Key: map[string]types.AttributeValue{
			"customerId": order["customerId"],
			"orderId":    order["orderId"],
		},
	})
	require.NoError(t, err)
	assert.Empty(t, db.Items("orders"))
	assert.Equal(t, 2, db.Calls(OpDeleteItem))
	assert.Equal(t, 4, db.TotalCalls())
}

func TestMemoryDynamoDB_MissingTable(t *testing.T) {
	db := NewMemoryDynamoDB()

	_, err := db.DescribeTable(context.Background(), &dynamodb.DescribeTableInput{TableName: aws.String("nope")})

	var notFound *types.ResourceNotFoundException
	assert.True(t, errors.As(err, &notFound))
	assert.Error(t, db.Seed("nope"))
}

func TestMockDynamoDBClient_Defaults(t *testing.T) {
	m := &MockDynamoDBClient{}

	out, err := m.Scan(context.Background(), &dynamodb.ScanInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}
