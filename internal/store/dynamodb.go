package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
)

const (
	maxBatchGetKeys   = 100
	maxBatchWriteReqs = 25
	maxBatchAttempts  = 3
	defaultBackoff    = 200 * time.Millisecond
)

// dynamoClient defines the minimal subset of the DynamoDB client used by the store.
type dynamoClient interface {
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStore keeps entries in a DynamoDB table with hash key "id".
type DynamoStore struct {
	client  dynamoClient
	table   string
	backoff time.Duration
	log     logger.Logger
}

// NewDynamoStore wraps a DynamoDB client for the given table.
func NewDynamoStore(client dynamoClient, table string, log logger.Logger) *DynamoStore {
	return &DynamoStore{
		client:  client,
		table:   table,
		backoff: defaultBackoff,
		log:     logger.Ensure(log),
	}
}

type existingItem struct {
	ID        string `dynamodbav:"id"`
	CreatedAt string `dynamodbav:"createdAt"`
}

// Existing batch-gets ids in chunks of 100, re-requesting unprocessed keys.
func (s *DynamoStore) Existing(ctx context.Context, ids []string) (map[string]string, error) {
	found := make(map[string]string, len(ids))
	for start := 0; start < len(ids); start += maxBatchGetKeys {
		end := min(start+maxBatchGetKeys, len(ids))

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: id},
			})
		}

		if err := s.batchGet(ctx, keys, found); err != nil {
			return nil, err
		}
	}

	s.log.DebugObj("dynamodb batch get complete", "store_batch_get", map[string]any{
		"table":     s.table,
		"requested": len(ids),
		"found":     len(found),
	})
	return found, nil
}

func (s *DynamoStore) batchGet(ctx context.Context, keys []map[string]types.AttributeValue, found map[string]string) error {
	pending := keys
	for attempt := 0; len(pending) > 0; attempt++ {
		if attempt >= maxBatchAttempts {
			return fmt.Errorf("dynamodb batch get: %d keys still unprocessed after %d attempts", len(pending), maxBatchAttempts)
		}
		if attempt > 0 {
			if err := s.wait(ctx, attempt); err != nil {
				return err
			}
		}

		out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.table: {
					Keys:                     pending,
					ProjectionExpression:     aws.String("#id, createdAt"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("dynamodb batch get: %w", err)
		}

		for _, item := range out.Responses[s.table] {
			var got existingItem
			if err := attributevalue.UnmarshalMap(item, &got); err != nil {
				return fmt.Errorf("decode dynamodb item: %w", err)
			}
			found[got.ID] = got.CreatedAt
		}

		pending = nil
		if rest, ok := out.UnprocessedKeys[s.table]; ok {
			pending = rest.Keys
		}
	}
	return nil
}

// Write puts entries in chunks of 25. A failing chunk does not stop the
// remaining chunks; every id that was not written is reported.
func (s *DynamoStore) Write(ctx context.Context, entries []domain.FeedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ready, failed := untranslated(entries)
	var firstErr error
	if len(failed) > 0 {
		firstErr = errors.New("entries without translation rejected")
	}

	for start := 0; start < len(ready); start += maxBatchWriteReqs {
		end := min(start+maxBatchWriteReqs, len(ready))
		chunk := ready[start:end]

		reqs := make([]types.WriteRequest, 0, len(chunk))
		for _, e := range chunk {
			item, err := attributevalue.MarshalMap(e)
			if err != nil {
				failed = append(failed, e.ID)
				if firstErr == nil {
					firstErr = fmt.Errorf("encode entry %s: %w", e.ID, err)
				}
				continue
			}
			reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		unwritten, err := s.batchWrite(ctx, reqs)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		failed = append(failed, unwritten...)
	}

	written := len(entries) - len(failed)
	s.log.InfoObj("dynamodb batch write complete", "store_batch_write", map[string]any{
		"table":   s.table,
		"written": written,
		"failed":  len(failed),
	})

	if len(failed) > 0 {
		return &domain.PersistenceError{FailedIDs: failed, Err: firstErr}
	}
	return nil
}

// batchWrite submits reqs and resubmits unprocessed items. It returns the ids
// that never made it.
func (s *DynamoStore) batchWrite(ctx context.Context, reqs []types.WriteRequest) ([]string, error) {
	pending := reqs
	for attempt := 0; len(pending) > 0; attempt++ {
		if attempt >= maxBatchAttempts {
			return requestIDs(pending), fmt.Errorf("dynamodb batch write: %d items still unprocessed after %d attempts", len(pending), maxBatchAttempts)
		}
		if attempt > 0 {
			if err := s.wait(ctx, attempt); err != nil {
				return requestIDs(pending), err
			}
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: pending},
		})
		if err != nil {
			return requestIDs(pending), fmt.Errorf("dynamodb batch write: %w", err)
		}
		pending = out.UnprocessedItems[s.table]
	}
	return nil, nil
}

func (s *DynamoStore) wait(ctx context.Context, attempt int) error {
	if s.backoff <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.backoff * time.Duration(1<<(attempt-1)))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error { return nil }

func requestIDs(reqs []types.WriteRequest) []string {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if r.PutRequest == nil {
			continue
		}
		if v, ok := r.PutRequest.Item["id"].(*types.AttributeValueMemberS); ok {
			ids = append(ids, v.Value)
		}
	}
	return ids
}
