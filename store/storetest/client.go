// Package storetest provides an in-memory double for the DynamoDB client
// subset the store uses, so packages can test storage flows without a real
// table. It understands only the expressions the store emits: the two
// conditional put forms, begins-with and greater-or-equal key conditions,
// and the type-tag scan filter.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is an in-memory DynamoDB test double. The zero value is not usable;
// call New.
type Client struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	// PageSize caps items per Query/Scan page so tests can exercise
	// pagination across continuation cursors. 0 means unlimited.
	PageSize int

	// PutHook, when set, runs before each write and can inject a failure
	// for a specific copy (e.g. a projection write).
	PutHook func(pk, sk string) error
}

// New creates an empty in-memory client.
func New() *Client {
	return &Client{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

const keySep = "\x00"

func itemKey(pk, sk string) string {
	return pk + keySep + sk
}

func attrString(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// Len returns the number of stored item copies.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Has reports whether a copy exists under the given key pair.
func (c *Client) Has(pk, sk string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[itemKey(pk, sk)]
	return ok
}

// GetItem implements the store client contract.
func (c *Client) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[itemKey(attrString(params.Key, "PK"), attrString(params.Key, "SK"))]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(item)}, nil
}

// PutItem implements the store client contract, honoring the two
// conditional expressions the store writes with.
func (c *Client) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	pk := attrString(params.Item, "PK")
	sk := attrString(params.Item, "SK")

	if c.PutHook != nil {
		if err := c.PutHook(pk, sk); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := itemKey(pk, sk)
	_, exists := c.items[key]
	if params.ConditionExpression != nil {
		cond := *params.ConditionExpression
		switch {
		case strings.Contains(cond, "attribute_not_exists") && exists:
			return nil, &types.ConditionalCheckFailedException{}
		case strings.Contains(cond, "attribute_exists") && !strings.Contains(cond, "attribute_not_exists") && !exists:
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	c.items[key] = cloneItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem implements the store client contract. Deleting an absent key
// succeeds, matching DynamoDB.
func (c *Client) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, itemKey(attrString(params.Key, "PK"), attrString(params.Key, "SK")))
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query implements the store client contract for the two key-condition
// shapes the store emits, paginating by PageSize.
func (c *Client) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pk := attrString(params.ExpressionAttributeValues, ":pk")
	sk := attrString(params.ExpressionAttributeValues, ":sk")
	cond := ""
	if params.KeyConditionExpression != nil {
		cond = *params.KeyConditionExpression
	}

	var matched []map[string]types.AttributeValue
	for _, item := range c.items {
		if attrString(item, "PK") != pk {
			continue
		}
		itemSK := attrString(item, "SK")
		switch {
		case strings.Contains(cond, "begins_with"):
			if !strings.HasPrefix(itemSK, sk) {
				continue
			}
		case strings.Contains(cond, ">="):
			if itemSK < sk {
				continue
			}
		}
		matched = append(matched, cloneItem(item))
	}
	sort.Slice(matched, func(i, j int) bool {
		return attrString(matched[i], "SK") < attrString(matched[j], "SK")
	})

	start := ""
	if params.ExclusiveStartKey != nil {
		start = attrString(params.ExclusiveStartKey, "SK")
	}
	page, last := paginate(matched, start, c.PageSize, func(item map[string]types.AttributeValue) string {
		return attrString(item, "SK")
	})
	return &dynamodb.QueryOutput{
		Items:            page,
		LastEvaluatedKey: last,
	}, nil
}

// Scan implements the store client contract for the type-tag filter,
// paginating by PageSize.
func (c *Client) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	typeTag := attrString(params.ExpressionAttributeValues, ":t")
	info := attrString(params.ExpressionAttributeValues, ":info")

	var matched []map[string]types.AttributeValue
	for _, item := range c.items {
		if attrString(item, "_Type") != typeTag {
			continue
		}
		if info != "" && attrString(item, "SK") != info {
			continue
		}
		matched = append(matched, cloneItem(item))
	}
	sort.Slice(matched, func(i, j int) bool {
		a := attrString(matched[i], "PK") + keySep + attrString(matched[i], "SK")
		b := attrString(matched[j], "PK") + keySep + attrString(matched[j], "SK")
		return a < b
	})

	start := ""
	if params.ExclusiveStartKey != nil {
		start = attrString(params.ExclusiveStartKey, "PK") + keySep + attrString(params.ExclusiveStartKey, "SK")
	}
	page, last := paginate(matched, start, c.PageSize, func(item map[string]types.AttributeValue) string {
		return attrString(item, "PK") + keySep + attrString(item, "SK")
	})
	return &dynamodb.ScanOutput{
		Items:            page,
		LastEvaluatedKey: last,
	}, nil
}

// paginate slices sorted items into one page, resuming strictly after the
// start position and reporting the continuation key when more remain.
func paginate(items []map[string]types.AttributeValue, start string, pageSize int, keyOf func(map[string]types.AttributeValue) string) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	from := 0
	if start != "" {
		for i, item := range items {
			if keyOf(item) > start {
				from = i
				break
			}
			from = i + 1
		}
	}
	remaining := items[from:]
	if pageSize <= 0 || len(remaining) <= pageSize {
		return remaining, nil
	}
	page := remaining[:pageSize]
	lastItem := page[len(page)-1]
	return page, map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: attrString(lastItem, "PK")},
		"SK": &types.AttributeValueMemberS{Value: attrString(lastItem, "SK")},
	}
}

func cloneItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	dup := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}
