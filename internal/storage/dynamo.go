package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore implements Store on top of a DynamoDB table whose primary key
// is a single string attribute. Secondary-index queries go through a GSI
// keyed on the queried field.
type DynamoStore struct {
	client  *dynamodb.Client
	keyAttr string
}

// NewDynamoStore creates a DynamoDB-backed store. keyAttr is the name of the
// table's partition key attribute; it defaults to "id".
func NewDynamoStore(client *dynamodb.Client, keyAttr string) *DynamoStore {
	if keyAttr == "" {
		keyAttr = "id"
	}
	return &DynamoStore{client: client, keyAttr: keyAttr}
}

func (s *DynamoStore) PutRecord(ctx context.Context, table, key string, attrs map[string]string) error {
	item := make(map[string]types.AttributeValue, len(attrs)+1)
	for k, v := range attrs {
		item[k] = &types.AttributeValueMemberS{Value: v}
	}
	item[s.keyAttr] = &types.AttributeValueMemberS{Value: key}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *DynamoStore) GetByKey(ctx context.Context, table, key string) (map[string]string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			s.keyAttr: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s/%s: %w", table, key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return attrsFromItem(out.Item), nil
}

func (s *DynamoStore) QueryByIndex(ctx context.Context, table, index, field, value string) ([]map[string]string, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#f = :v"),
		ExpressionAttributeNames: map[string]string{
			"#f": field,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb query %s/%s=%s: %w", table, field, value, err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	recs := make([]map[string]string, 0, len(out.Items))
	for _, item := range out.Items {
		recs = append(recs, attrsFromItem(item))
	}
	return recs, nil
}

// UpdateRecord overwrites the given attributes at key with a single SET
// expression. DynamoDB creates the item when it does not exist yet.
func (s *DynamoStore) UpdateRecord(ctx context.Context, table, key string, attrs map[string]string) error {
	fields := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == s.keyAttr {
			continue
		}
		fields = append(fields, k)
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	for i, f := range fields {
		n := fmt.Sprintf("#a%d", i)
		v := fmt.Sprintf(":v%d", i)
		parts = append(parts, n+" = "+v)
		names[n] = f
		values[v] = &types.AttributeValueMemberS{Value: attrs[f]}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			s.keyAttr: &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(parts, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("dynamodb update %s/%s: %w", table, key, err)
	}
	return nil
}

// DeleteRecord removes the item at key. Deleting a missing item succeeds.
func (s *DynamoStore) DeleteRecord(ctx context.Context, table, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			s.keyAttr: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb delete %s/%s: %w", table, key, err)
	}
	return nil
}

func attrsFromItem(item map[string]types.AttributeValue) map[string]string {
	out := make(map[string]string, len(item))
	for k, v := range item {
		if sv, ok := v.(*types.AttributeValueMemberS); ok {
			out[k] = sv.Value
		}
	}
	return out
}
