// Package qdrant provides a VectorDB implementation using Qdrant.
package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
)

// pointNamespace derives stable point ids from element ids that are not UUIDs.
var pointNamespace = uuid.MustParse("6f1c7c0e-3d4b-4f0a-9d8e-2b1a5c4e7f90")

// waitForWrite makes writes visible to the next search.
var waitForWrite = true

// Payload keys.
const (
	keyElementID = "element_id"
	keyWorldID   = "world_id"
	keyTitle     = "title"
	keyType      = "type"
)

// Repository implements ports.VectorDB and ports.IndexManager using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	apiKey     string
	conn       *grpc.ClientConn
}

var (
	_ ports.VectorDB     = (*Repository)(nil)
	_ ports.IndexManager = (*Repository)(nil)
)

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// withAuth attaches the API key for Qdrant Cloud.
func (r *Repository) withAuth(ctx context.Context) context.Context {
	if r.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", r.apiKey)
}

// EnsureIndex creates the collection if it doesn't exist.
func (r *Repository) EnsureIndex(ctx context.Context, vectorSize uint64) error {
	ctx = r.withAuth(ctx)

	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// Upsert stores or replaces element vectors.
func (r *Repository) Upsert(ctx context.Context, vectors []ports.ElementVector) error {
	if len(vectors) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(vectors))
	for i := range vectors {
		points = append(points, toPoint(vectors[i]))
	}

	_, err := r.points.Upsert(r.withAuth(ctx), &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &waitForWrite,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Delete removes element vectors by element ID.
func (r *Repository) Delete(ctx context.Context, elementIDs []string) error {
	if len(elementIDs) == 0 {
		return nil
	}

	ids := make([]*pb.PointId, 0, len(elementIDs))
	for _, id := range elementIDs {
		ids = append(ids, &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(id)}})
	}

	_, err := r.points.Delete(r.withAuth(ctx), &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           &waitForWrite,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: ids},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	return nil
}

// DeleteByWorld removes every vector belonging to a world.
func (r *Repository) DeleteByWorld(ctx context.Context, worldID string) error {
	_, err := r.points.Delete(r.withAuth(ctx), &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           &waitForWrite,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: worldFilter(worldID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points by world: %w", err)
	}

	return nil
}

// Search returns the elements of a world closest to the embedding.
func (r *Repository) Search(ctx context.Context, worldID string, embedding []float32, limit int) ([]ports.SearchHit, error) {
	resp, err := r.points.Search(r.withAuth(ctx), &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         worldFilter(worldID),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: false},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToHits(resp.Result), nil
}

// Count returns the number of vectors in the collection.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(r.withAuth(ctx), &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// pointID maps an element id to a Qdrant point id. UUIDs pass through.
func pointID(elementID string) string {
	if id, err := uuid.Parse(elementID); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(pointNamespace, []byte(elementID)).String()
}

func worldFilter(worldID string) *pb.Filter {
	return &pb.Filter{
		Must: []*pb.Condition{
			{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key: keyWorldID,
						Match: &pb.Match{
							MatchValue: &pb.Match_Keyword{
								Keyword: worldID,
							},
						},
					},
				},
			},
		},
	}
}

func toPoint(v ports.ElementVector) *pb.PointStruct {
	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{
				Uuid: pointID(v.ElementID),
			},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{
					Data: v.Embedding,
				},
			},
		},
		Payload: map[string]*pb.Value{
			keyElementID: {Kind: &pb.Value_StringValue{StringValue: v.ElementID}},
			keyWorldID:   {Kind: &pb.Value_StringValue{StringValue: v.WorldID}},
			keyTitle:     {Kind: &pb.Value_StringValue{StringValue: v.Title}},
			keyType:      {Kind: &pb.Value_StringValue{StringValue: v.Type}},
		},
	}
}

// scoredPointsToHits converts scored points to search hits.
func scoredPointsToHits(points []*pb.ScoredPoint) []ports.SearchHit {
	hits := make([]ports.SearchHit, 0, len(points))

	for _, point := range points {
		payload := point.Payload
		hits = append(hits, ports.SearchHit{
			ElementID: getStringValue(payload, keyElementID),
			WorldID:   getStringValue(payload, keyWorldID),
			Title:     getStringValue(payload, keyTitle),
			Type:      getStringValue(payload, keyType),
			Score:     point.Score,
		})
	}

	return hits
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
