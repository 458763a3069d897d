package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"golang.org/x/sync/errgroup"
)

// Conditions for the mutually exclusive create/update write paths. The
// distinction is load-bearing: collapsing them into an unconditional upsert
// would change the failure semantics callers rely on.
const (
	createCondition = "attribute_not_exists(#pk)"
	updateCondition = "attribute_exists(#pk)"
)

// Client is the subset of the DynamoDB API used by Table. Both the real
// *dynamodb.Client and test doubles satisfy it.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Table provides single-table chat storage with projection support.
type Table struct {
	client   Client
	config   Config
	registry *Registry
	logger   *slog.Logger
}

// New creates a new Table instance with the default record registry.
func New(client Client, config Config) *Table {
	return NewWithLogger(client, config, nil)
}

// NewWithLogger creates a new Table instance with an explicit logger.
func NewWithLogger(client Client, config Config, logger *slog.Logger) *Table {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		client:   client,
		config:   config,
		registry: DefaultRegistry(),
		logger:   logger,
	}
}

// Registry returns the record type registry.
func (t *Table) Registry() *Registry {
	return t.registry
}

// Get retrieves the record stored under key into out, returning ErrNotFound
// when no record exists.
func (t *Table) Get(ctx context.Context, key Key, out Record) error {
	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.config.TableName),
		Key:       keyAttrs(key),
	})
	if err != nil {
		return err
	}
	if result.Item == nil {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

// Create writes the record's primary copy and all projections, requiring the
// keys be absent. Returns ErrAlreadyExists when the precondition fails.
func (t *Table) Create(ctx context.Context, rec Record) error {
	if err := t.putAll(ctx, rec, createCondition); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update rewrites the record's primary copy and all projections, requiring
// the keys be present. Returns ErrNotFound when the precondition fails.
func (t *Table) Update(ctx context.Context, rec Record) error {
	if err := t.putAll(ctx, rec, updateCondition); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			t.logger.Warn("update of absent record",
				"type", rec.RecordType(),
				"pk", rec.PrimaryKey().PK,
			)
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the record's primary copy and all projections. Deleting an
// absent record is not an error; a missing projection copy is tolerated so a
// close event racing a reaped connection still succeeds.
func (t *Table) Delete(ctx context.Context, rec Record) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range allKeys(rec) {
		g.Go(func() error {
			_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(t.config.TableName),
				Key:       keyAttrs(key),
			})
			return err
		})
	}
	return g.Wait()
}

// putAll writes every copy of the record concurrently under one condition.
// There is no rollback: if one copy fails the others may already have been
// written. Callers treat the projection set as best-effort and must not
// depend on all copies becoming visible at the same instant.
func (t *Table) putAll(ctx context.Context, rec Record, condition string) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", rec.RecordType(), err)
	}
	item["_Type"] = &types.AttributeValueMemberS{Value: rec.RecordType()}

	g, ctx := errgroup.WithContext(ctx)
	for _, key := range allKeys(rec) {
		g.Go(func() error {
			dup := cloneItem(item)
			dup["PK"] = &types.AttributeValueMemberS{Value: key.PK}
			dup["SK"] = &types.AttributeValueMemberS{Value: key.SK}
			_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
				TableName:                aws.String(t.config.TableName),
				Item:                     dup,
				ConditionExpression:      aws.String(condition),
				ExpressionAttributeNames: map[string]string{"#pk": "PK"},
			})
			return err
		})
	}
	return g.Wait()
}

// decode dispatches a raw item to its concrete record type via the registry.
func (t *Table) decode(item map[string]types.AttributeValue) (Record, error) {
	rec, err := t.registry.New(stringAttr(item, "_Type"))
	if err != nil {
		return nil, err
	}
	if err := attributevalue.UnmarshalMap(item, rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}

// decodeAll decodes raw items into records of type T, skipping items of
// other types. Partitions are shared between entity types, so a range query
// may brush against foreign copies; those are logged and dropped rather than
// failing the whole sequence.
func decodeAll[T Record](t *Table, items []map[string]types.AttributeValue) []T {
	records := make([]T, 0, len(items))
	for _, item := range items {
		rec, err := t.decode(item)
		if err != nil {
			t.logger.Warn("skipping undecodable item",
				"type", stringAttr(item, "_Type"),
				"pk", stringAttr(item, "PK"),
				"error", err,
			)
			continue
		}
		typed, ok := rec.(T)
		if !ok {
			t.logger.Warn("skipping record of unexpected type",
				"type", rec.RecordType(),
				"pk", stringAttr(item, "PK"),
			)
			continue
		}
		records = append(records, typed)
	}
	return records
}

// keyAttrs converts a Key to its DynamoDB attribute form.
func keyAttrs(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: key.PK},
		"SK": &types.AttributeValueMemberS{Value: key.SK},
	}
}

// cloneItem shallow-copies an item so each projection write can carry its
// own key attributes.
func cloneItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	dup := make(map[string]types.AttributeValue, len(item)+2)
	for k, v := range item {
		dup[k] = v
	}
	return dup
}

// stringAttr extracts a string attribute, returning "" when absent or not a
// string.
func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
