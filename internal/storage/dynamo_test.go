package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupDynamoContainer(t *testing.T) (*dynamodb.Client, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "amazon/dynamodb-local:latest",
		ExposedPorts: []string{"8000/tcp"},
		WaitingFor:   wait.ForListeningPort("8000/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "8000")
	endpoint := fmt.Sprintf("http://%s:%d", host, port.Int())

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		),
	)
	assert.NoError(t, err)

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	_, err = client.CreateTable(context.Background(), &dynamodb.CreateTableInput{
		TableName: aws.String("users"),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("email"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String("email-id-index"),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("email"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("id"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	assert.NoError(t, err)

	// dynamodb-local activates tables synchronously, but poll to be safe.
	for i := 0; i < 10; i++ {
		out, derr := client.DescribeTable(context.Background(), &dynamodb.DescribeTableInput{
			TableName: aws.String("users"),
		})
		if derr == nil && out.Table.TableStatus == types.TableStatusActive {
			break
		}
		time.Sleep(time.Second)
	}

	teardown := func() {
		container.Terminate(context.Background())
	}

	return client, teardown
}

func TestDynamoStore_PutGetQuery(t *testing.T) {
	client, teardown := setupDynamoContainer(t)
	defer teardown()

	store := NewDynamoStore(client, "id")
	ctx := context.Background()

	attrs := map[string]string{
		"id":        "k1",
		"name":      "Jane",
		"email":     "jane@example.com",
		"password":  "$2a$10$hash",
		"salt":      "abcd",
		"createdAt": "2024-05-01T10:00:00Z",
	}
	assert.NoError(t, store.PutRecord(ctx, "users", "k1", attrs))

	got, err := store.GetByKey(ctx, "users", "k1")
	assert.NoError(t, err)
	assert.Equal(t, attrs, got)

	recs, err := store.QueryByIndex(ctx, "users", "email-id-index", "email", "jane@example.com")
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "k1", recs[0]["id"])

	_, err = store.GetByKey(ctx, "users", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.QueryByIndex(ctx, "users", "email-id-index", "email", "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoStore_UpdateAndDelete(t *testing.T) {
	client, teardown := setupDynamoContainer(t)
	defer teardown()

	store := NewDynamoStore(client, "id")
	ctx := context.Background()

	assert.NoError(t, store.PutRecord(ctx, "users", "k1", map[string]string{
		"id":    "k1",
		"name":  "Jane",
		"email": "jane@example.com",
	}))

	assert.NoError(t, store.UpdateRecord(ctx, "users", "k1", map[string]string{
		"name": "Renamed",
	}))

	got, err := store.GetByKey(ctx, "users", "k1")
	assert.NoError(t, err)
	assert.Equal(t, "Renamed", got["name"])
	assert.Equal(t, "jane@example.com", got["email"])

	assert.NoError(t, store.DeleteRecord(ctx, "users", "k1"))
	_, err = store.GetByKey(ctx, "users", "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing item succeeds.
	assert.NoError(t, store.DeleteRecord(ctx, "users", "k1"))
}
