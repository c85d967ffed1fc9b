package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/studypal-api/internal/domain"
)

// EntitlementRepo provides typed DynamoDB operations for the entitlements
// table, including the transactional premium grant.
type EntitlementRepo struct {
	client         *dynamodb.Client
	tableName      string
	usersTableName string
}

func NewEntitlementRepo(client *dynamodb.Client, tableName, usersTableName string) *EntitlementRepo {
	return &EntitlementRepo{client: client, tableName: tableName, usersTableName: usersTableName}
}

// Grant writes the entitlement and flips the owning user's premium flag in a
// single TransactWriteItems call. Either both land or neither does.
func (r *EntitlementRepo) Grant(ctx context.Context, e *domain.Entitlement) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal entitlement: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      item,
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(r.usersTableName),
					Key:                 strKey("user_id", e.UserID),
					ConditionExpression: aws.String("attribute_exists(user_id)"),
					UpdateExpression:    aws.String("SET is_premium = :t, updated_at = :now"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":t":   &types.AttributeValueMemberBOOL{Value: true},
						":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
					},
				},
			},
		},
	})
	return err
}

// ListByUser returns all entitlements granted to a user, via the user_id GSI.
func (r *EntitlementRepo) ListByUser(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var ents []domain.Entitlement
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ents); err != nil {
		return nil, err
	}
	return ents, nil
}
