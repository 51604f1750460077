package copytables

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

// DefaultStageToken is substituted by the stage when no other token is configured.
const DefaultStageToken = "${stage}"

// Record is one table item. Its attributes are copied verbatim.
type Record = map[string]types.AttributeValue

// TableDescriptor names one table in both stages.
type TableDescriptor struct {
	// Logical is the stage independent name, e.g. "users-${stage}"
	Logical string

	// Source is the physical table name in the source stage
	Source string

	// Target is the physical table name in the target stage
	Target string
}

// PhysicalName replaces the first occurrence of token in logical with stage.
func PhysicalName(logical, token, stage string) string {
	return strings.Replace(logical, token, stage, 1)
}

// Describe builds the descriptor of a logical table for both stages.
func Describe(logical, token, sourceStage, targetStage string) TableDescriptor {
	return TableDescriptor{
		Logical: logical,
		Source:  PhysicalName(logical, token, sourceStage),
		Target:  PhysicalName(logical, token, targetStage),
	}
}

// KeySchema holds the primary key attribute names of a table.
type KeySchema struct {
	PartitionKey string
	SortKey      string
}

// HasSortKey reports whether the table uses a composite primary key.
func (k KeySchema) HasSortKey() bool {
	return k.SortKey != ""
}

// KeyOf extracts the primary key of record.
func (k KeySchema) KeyOf(record Record) (map[string]types.AttributeValue, error) {
	pk, ok := record[k.PartitionKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrMissingKeyAttribute, k.PartitionKey)
	}
	key := map[string]types.AttributeValue{k.PartitionKey: pk}

	if k.HasSortKey() {
		sk, ok := record[k.SortKey]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrMissingKeyAttribute, k.SortKey)
		}
		key[k.SortKey] = sk
	}
	return key, nil
}

// keySchemaFrom reads the HASH and RANGE entries of a table description.
func keySchemaFrom(elements []types.KeySchemaElement) (KeySchema, error) {
	var ks KeySchema
	for _, el := range elements {
		switch el.KeyType {
		case types.KeyTypeHash:
			ks.PartitionKey = aws.ToString(el.AttributeName)
		case types.KeyTypeRange:
			ks.SortKey = aws.ToString(el.AttributeName)
		}
	}
	if ks.PartitionKey == "" {
		return KeySchema{}, errors.ErrMissingPartitionKey
	}
	return ks, nil
}
