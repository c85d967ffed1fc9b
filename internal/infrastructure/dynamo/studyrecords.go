package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/studypal-api/internal/domain"
)

// StudyRecordRepo provides typed DynamoDB operations for the study_records table.
type StudyRecordRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStudyRecordRepo(client *dynamodb.Client, tableName string) *StudyRecordRepo {
	return &StudyRecordRepo{client: client, tableName: tableName}
}

func (r *StudyRecordRepo) Put(ctx context.Context, rec *domain.StudyRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal study record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *StudyRecordRepo) Get(ctx context.Context, recordID string) (*domain.StudyRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("record_id", recordID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("study record not found: %w", domain.ErrNotFound)
	}
	var rec domain.StudyRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByUser queries the user_id-created_at GSI newest-first.
func (r *StudyRecordRepo) ListByUser(ctx context.Context, userID string, limit int32) ([]domain.StudyRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var recs []domain.StudyRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *StudyRecordRepo) Delete(ctx context.Context, recordID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("record_id", recordID),
	})
	return err
}
