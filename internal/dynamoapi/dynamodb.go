// Package dynamoapi defines interfaces for DynamoDB operations to enable testing and mocking.
package dynamoapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBAPI defines the storage engine operations used by the copier.
// Only the four primitives the pipeline needs are exposed.
type DynamoDBAPI interface {
	// DescribeTable returns the table description including its key schema
	DescribeTable(
		ctx context.Context,
		params *dynamodb.DescribeTableInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.DescribeTableOutput, error)

	// Scan reads one page of items from a table
	Scan(
		ctx context.Context,
		params *dynamodb.ScanInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.ScanOutput, error)

	// PutItem writes an item, replacing any item with the same key
	PutItem(
		ctx context.Context,
		params *dynamodb.PutItemInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.PutItemOutput, error)

	// DeleteItem removes the item with the given key
	DeleteItem(
		ctx context.Context,
		params *dynamodb.DeleteItemInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.DeleteItemOutput, error)
}

var (
	// Verify that the AWS DynamoDB client implements our interface
	_ DynamoDBAPI = (*dynamodb.Client)(nil)

	// Scan pagination is driven by the SDK paginator
	_ dynamodb.ScanAPIClient = (DynamoDBAPI)(nil)
)
