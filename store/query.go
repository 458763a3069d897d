package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/ripple/internal/keys"
)

// queryPrefix returns every item in a partition whose sort key begins with
// prefix, in ascending sort-key order, following continuation cursors until
// exhausted. The result is a finite snapshot, not a live subscription.
func (t *Table) queryPrefix(ctx context.Context, pk, prefix string) ([]map[string]types.AttributeValue, error) {
	return t.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.config.TableName),
		KeyConditionExpression: aws.String("#pk = :pk AND begins_with(#sk, :sk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "PK",
			"#sk": "SK",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
			":sk": &types.AttributeValueMemberS{Value: prefix},
		},
	})
}

// querySince returns every item in a partition whose sort key is greater
// than or equal to floor, in ascending sort-key order, across pagination
// boundaries.
func (t *Table) querySince(ctx context.Context, pk, floor string) ([]map[string]types.AttributeValue, error) {
	return t.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.config.TableName),
		KeyConditionExpression: aws.String("#pk = :pk AND #sk >= :sk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "PK",
			"#sk": "SK",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
			":sk": &types.AttributeValueMemberS{Value: floor},
		},
	})
}

func (t *Table) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// scanByType returns every primary record with the given type tag. Used only
// for the broadcast access path, which must visit all users.
func (t *Table) scanByType(ctx context.Context, typeTag string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(t.client, &dynamodb.ScanInput{
		TableName:        aws.String(t.config.TableName),
		FilterExpression: aws.String("#t = :t AND #sk = :info"),
		ExpressionAttributeNames: map[string]string{
			"#t":  "_Type",
			"#sk": "SK",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":    &types.AttributeValueMemberS{Value: typeTag},
			":info": &types.AttributeValueMemberS{Value: keys.Info},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
