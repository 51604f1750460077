// Package testutil provides test helper functions.
package testutil

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// MarshalItem converts a Go value into a DynamoDB item.
// Struct fields use `dynamodbav` tags; maps are marshalled key by key.
func MarshalItem(t testing.TB, v any) map[string]types.AttributeValue {
	t.Helper()

	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err, "marshal item")
	return item
}

// MarshalItems converts every value into a DynamoDB item.
func MarshalItems(t testing.TB, values ...any) []map[string]types.AttributeValue {
	t.Helper()

	items := make([]map[string]types.AttributeValue, 0, len(values))
	for _, v := range values {
		items = append(items, MarshalItem(t, v))
	}
	return items
}

// UnmarshalItems converts DynamoDB items into plain maps for easy assertions.
func UnmarshalItems(t testing.TB, items []map[string]types.AttributeValue) []map[string]any {
	t.Helper()

	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		var m map[string]any
		require.NoError(t, attributevalue.UnmarshalMap(item, &m), "unmarshal item %d", i)
		out = append(out, m)
	}
	return out
}

// StringAttr returns the string value of an attribute, or "" if it is not a string.
func StringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// User is a fixture record with a partition key only.
type User struct {
	ID    string `dynamodbav:"id"`
	Name  string `dynamodbav:"name"`
	Email string `dynamodbav:"email,omitempty"`
}

// Order is a fixture record with a partition and a sort key.
type Order struct {
	CustomerID string  `dynamodbav:"customerId"`
	OrderID    string  `dynamodbav:"orderId"`
	Total      float64 `dynamodbav:"total"`
}

// GenerateUsers returns n users with predictable ids prefixed by prefix.
func GenerateUsers(prefix string, n int) []User {
	users := make([]User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, User{
			ID:   fmt.Sprintf("%s-%03d", prefix, i),
			Name: fmt.Sprintf("user %d", i),
		})
	}
	return users
}
