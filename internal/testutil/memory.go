package testutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/seldebrings/sls-copy-stack-tables/internal/dynamoapi"
)

// Operation names used by MemoryDynamoDB call counters.
const (
	OpDescribeTable = "DescribeTable"
	OpScan          = "Scan"
	OpPutItem       = "PutItem"
	OpDeleteItem    = "DeleteItem"
)

// MemoryDynamoDB is an in-memory DynamoDB implementing the subset of the API the
// copier uses. Items keep insertion order so scans are deterministic.
//
// It is safe for concurrent use.
type MemoryDynamoDB struct {
	mu     sync.Mutex
	tables map[string]*memTable
	calls  map[string]int

	// PageSize limits the number of items returned per Scan page. Zero returns
	// the whole table in one page.
	PageSize int

	// PutItemErr, when set, is consulted before every PutItem. A non-nil result
	// fails that call without writing.
	PutItemErr func(table string, item map[string]types.AttributeValue) error

	// DeleteItemErr, when set, is consulted before every DeleteItem.
	DeleteItemErr func(table string, key map[string]types.AttributeValue) error

	// ScanErr, when set, is consulted before every Scan.
	ScanErr func(table string) error
}

type memTable struct {
	schema []types.KeySchemaElement
	order  []string
	items  map[string]map[string]types.AttributeValue
}

// NewMemoryDynamoDB creates an empty in-memory DynamoDB.
func NewMemoryDynamoDB() *MemoryDynamoDB {
	return &MemoryDynamoDB{
		tables: make(map[string]*memTable),
		calls:  make(map[string]int),
	}
}

// CreateTable registers a table with a partition key and an optional sort key.
func (m *MemoryDynamoDB) CreateTable(name, partitionKey, sortKey string) {
	schema := []types.KeySchemaElement{
		{AttributeName: aws.String(partitionKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(sortKey),
			KeyType:       types.KeyTypeRange,
		})
	}
	m.CreateTableWithSchema(name, schema)
}

// CreateTableWithSchema registers a table with an explicit key schema.
// It allows malformed schemas for negative tests.
func (m *MemoryDynamoDB) CreateTableWithSchema(name string, schema []types.KeySchemaElement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = &memTable{
		schema: schema,
		items:  make(map[string]map[string]types.AttributeValue),
	}
}

// Seed writes items directly, bypassing call counters and failure hooks.
func (m *MemoryDynamoDB) Seed(table string, items ...map[string]types.AttributeValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("seed %s: table not found", table)
	}
	for _, item := range items {
		if err := t.put(item); err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
	}
	return nil
}

// Items returns a copy of every item in the table in insertion order.
func (m *MemoryDynamoDB) Items(table string) []map[string]types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return nil
	}
	out := make([]map[string]types.AttributeValue, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, copyItem(t.items[k]))
	}
	return out
}

// Calls returns how many times the named operation was invoked.
func (m *MemoryDynamoDB) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of storage calls of any kind.
func (m *MemoryDynamoDB) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// DescribeTable implements dynamoapi.DynamoDBAPI.
func (m *MemoryDynamoDB) DescribeTable(
	_ context.Context,
	params *dynamodb.DescribeTableInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.DescribeTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[OpDescribeTable]++

	name := aws.ToString(params.TableName)
	t, ok := m.tables[name]
	if !ok {
		return nil, notFound(name)
	}

	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   aws.String(name),
			KeySchema:   append([]types.KeySchemaElement(nil), t.schema...),
			ItemCount:   aws.Int64(int64(len(t.order))),
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

// Scan implements dynamoapi.DynamoDBAPI.
func (m *MemoryDynamoDB) Scan(
	_ context.Context,
	params *dynamodb.ScanInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[OpScan]++

	name := aws.ToString(params.TableName)
	if m.ScanErr != nil {
		if err := m.ScanErr(name); err != nil {
			return nil, err
		}
	}
	t, ok := m.tables[name]
	if !ok {
		return nil, notFound(name)
	}

	start := 0
	if len(params.ExclusiveStartKey) > 0 {
		k, err := t.keyOf(params.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		start = t.indexAfter(k)
	}

	limit := m.PageSize
	if params.Limit != nil && (limit == 0 || int(*params.Limit) < limit) {
		limit = int(*params.Limit)
	}

	end := len(t.order)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range t.order[start:end] {
		out.Items = append(out.Items, copyItem(t.items[k]))
	}
	out.Count = int32(len(out.Items))
	out.ScannedCount = out.Count

	if end < len(t.order) && end > start {
		out.LastEvaluatedKey = t.keyAttributes(t.items[t.order[end-1]])
	}
	return out, nil
}

// PutItem implements dynamoapi.DynamoDBAPI.
func (m *MemoryDynamoDB) PutItem(
	_ context.Context,
	params *dynamodb.PutItemInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[OpPutItem]++

	name := aws.ToString(params.TableName)
	if m.PutItemErr != nil {
		if err := m.PutItemErr(name, params.Item); err != nil {
			return nil, err
		}
	}
	t, ok := m.tables[name]
	if !ok {
		return nil, notFound(name)
	}
	if err := t.put(params.Item); err != nil {
		return nil, err
	}
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem implements dynamoapi.DynamoDBAPI.
func (m *MemoryDynamoDB) DeleteItem(
	_ context.Context,
	params *dynamodb.DeleteItemInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[OpDeleteItem]++

	name := aws.ToString(params.TableName)
	if m.DeleteItemErr != nil {
		if err := m.DeleteItemErr(name, params.Key); err != nil {
			return nil, err
		}
	}
	t, ok := m.tables[name]
	if !ok {
		return nil, notFound(name)
	}
	if len(params.Key) != len(t.schema) {
		return nil, validation("the provided key element does not match the schema")
	}
	k, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	if _, exists := t.items[k]; exists {
		delete(t.items, k)
		for i, o := range t.order {
			if o == k {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (t *memTable) put(item map[string]types.AttributeValue) error {
	k, err := t.keyOf(item)
	if err != nil {
		return err
	}
	if _, exists := t.items[k]; !exists {
		t.order = append(t.order, k)
	}
	t.items[k] = copyItem(item)
	return nil
}

func (t *memTable) keyOf(item map[string]types.AttributeValue) (string, error) {
	parts := make([]string, 0, len(t.schema))
	for _, el := range t.schema {
		name := aws.ToString(el.AttributeName)
		v, ok := item[name]
		if !ok {
			return "", validation(fmt.Sprintf("missing the key %s in the item", name))
		}
		enc, err := encodeKeyValue(v)
		if err != nil {
			return "", err
		}
		parts = append(parts, enc)
	}
	return strings.Join(parts, "|"), nil
}

func (t *memTable) keyAttributes(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, len(t.schema))
	for _, el := range t.schema {
		name := aws.ToString(el.AttributeName)
		key[name] = item[name]
	}
	return key
}

func (t *memTable) indexAfter(k string) int {
	for i, o := range t.order {
		if o == k {
			return i + 1
		}
	}
	return len(t.order)
}

func encodeKeyValue(v types.AttributeValue) (string, error) {
	switch tv := v.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + tv.Value, nil
	case *types.AttributeValueMemberN:
		return "N:" + tv.Value, nil
	case *types.AttributeValueMemberB:
		return "B:" + base64.StdEncoding.EncodeToString(tv.Value), nil
	default:
		return "", validation("key attributes must be of type S, N or B")
	}
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func notFound(table string) error {
	return &types.ResourceNotFoundException{
		Message: aws.String("Requested resource not found: Table: " + table + " not found"),
	}
}

func validation(msg string) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: msg,
		Fault:   smithy.FaultClient,
	}
}

var _ dynamoapi.DynamoDBAPI = (*MemoryDynamoDB)(nil)
