package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/neighbourlink-api/internal/domain"
)

// PostRepo provides typed DynamoDB operations for the posts table.
//
// Responder mutations use optimistic concurrency: every write that touches
// the responders list is conditioned on the item's version attribute and
// bumps it, so two concurrent writers cannot both succeed on the same
// version. Callers retry on ErrVersionConflict.
type PostRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPostRepo(client *dynamodb.Client, tableName string) *PostRepo {
	return &PostRepo{client: client, tableName: tableName}
}

func (r *PostRepo) Put(ctx context.Context, p *domain.Post) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	// Constant partition attribute feeds the created_at-ordered GSI.
	item["feed_partition"] = &types.AttributeValueMemberS{Value: feedPartition}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("post_id", postID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	var p domain.Post
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	if !p.Enable {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

// QueryRecent returns up to limit enabled posts ordered by creation time
// descending, via the feed GSI.
func (r *PostRepo) QueryRecent(ctx context.Context, limit int32) ([]domain.Post, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("feed_partition-created_at-index"),
		KeyConditionExpression:   aws.String("feed_partition = :p"),
		FilterExpression:         aws.String(filterEnabled),
		ExpressionAttributeNames: enabledAlias(),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: feedPartition},
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// QueryByUser returns a user's own posts via the user_id GSI.
func (r *PostRepo) QueryByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression:   aws.String("user_id = :uid"),
		FilterExpression:         aws.String(filterEnabled),
		ExpressionAttributeNames: enabledAlias(),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AppendResponder appends entry to the post's responders list, conditioned
// on version still being expectedVersion. A lost race (or a vanished post)
// surfaces as ErrVersionConflict; the caller re-reads and retries.
func (r *PostRepo) AppendResponder(ctx context.Context, postID string, expectedVersion int64, entry domain.ResponderEntry) error {
	entryAv, err := attributevalue.Marshal([]domain.ResponderEntry{entry})
	if err != nil {
		return fmt.Errorf("marshal responder entry: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("post_id", postID),
		UpdateExpression:    aws.String("SET responders = list_append(if_not_exists(responders, :empty), :entry), version = :newv, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(post_id) AND version = :ver"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":entry": entryAv,
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":ver":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
			":newv":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion+1)},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("append responder to %s: %w", postID, domain.ErrVersionConflict)
		}
		return err
	}
	return nil
}

// ReplaceResponders overwrites the whole responders list under the same
// version condition. Used by the owner's accept action.
func (r *PostRepo) ReplaceResponders(ctx context.Context, postID string, expectedVersion int64, responders []domain.ResponderEntry) error {
	listAv, err := attributevalue.Marshal(responders)
	if err != nil {
		return fmt.Errorf("marshal responders: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("post_id", postID),
		UpdateExpression:    aws.String("SET responders = :list, version = :newv, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(post_id) AND version = :ver"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":list": listAv,
			":ver":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
			":newv": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion+1)},
			":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("replace responders on %s: %w", postID, domain.ErrVersionConflict)
		}
		return err
	}
	return nil
}

func (r *PostRepo) Update(ctx context.Context, postID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("post_id", postID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *PostRepo) SoftDelete(ctx context.Context, postID string) error {
	return r.Update(ctx, postID, map[string]interface{}{fieldEnable: false})
}
