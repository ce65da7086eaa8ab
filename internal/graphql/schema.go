package graphql

import (
	"log/slog"
	"time"

	"hookboard/internal/storage"

	"github.com/graphql-go/graphql"
)

// Schema defines the GraphQL schema and resolvers
type Schema struct {
	schema graphql.Schema
	store  storage.Storage
	logger *slog.Logger
	now    func() time.Time
}

// NewSchema creates a new read-only GraphQL schema over store
func NewSchema(store storage.Storage, logger *slog.Logger) (*Schema, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Schema{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	// Define Webhook type
	webhookType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Webhook",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
			},
			"action": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
			},
			"author": &graphql.Field{
				Type: graphql.String,
			},
			"fromBranch": &graphql.Field{
				Type: graphql.String,
			},
			"toBranch": &graphql.Field{
				Type: graphql.String,
			},
			"timestamp": &graphql.Field{
				Type:        graphql.DateTime,
				Description: "Receipt time, UTC",
			},
			"formattedTimestamp": &graphql.Field{
				Type: graphql.String,
			},
			"repository": &graphql.Field{
				Type: graphql.String,
			},
			"eventType": &graphql.Field{
				Type: graphql.String,
			},
			"message": &graphql.Field{
				Type:        graphql.String,
				Description: "Dashboard sentence for the event",
			},
			"payload": &graphql.Field{
				Type:        graphql.String,
				Description: "Raw webhook body as received",
			},
		},
	})

	// Define WebhooksResponse type
	webhooksResponseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WebhooksResponse",
		Fields: graphql.Fields{
			"webhooks": &graphql.Field{
				Type: graphql.NewList(webhookType),
			},
			"count": &graphql.Field{
				Type: graphql.Int,
			},
		},
	})

	// Define Stats types
	actionCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ActionCount",
		Fields: graphql.Fields{
			"action": &graphql.Field{
				Type: graphql.String,
			},
			"count": &graphql.Field{
				Type: graphql.Int,
			},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stats",
		Fields: graphql.Fields{
			"total": &graphql.Field{
				Type: graphql.Int,
			},
			"today": &graphql.Field{
				Type: graphql.Int,
			},
			"actionCounts": &graphql.Field{
				Type: graphql.NewList(actionCountType),
			},
		},
	})

	// Define root query
	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"webhooks": &graphql.Field{
				Type: webhooksResponseType,
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{
						Type: graphql.Int,
					},
					"offset": &graphql.ArgumentConfig{
						Type: graphql.Int,
					},
					"since": &graphql.ArgumentConfig{
						Type: graphql.DateTime,
					},
				},
				Resolve: s.resolveWebhooks,
			},
			"webhook": &graphql.Field{
				Type: webhookType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.ID),
					},
				},
				Resolve: s.resolveWebhook,
			},
			"stats": &graphql.Field{
				Type:    statsType,
				Resolve: s.resolveStats,
			},
		},
	})

	// Create schema
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: rootQuery,
	})
	if err != nil {
		return nil, err
	}

	s.schema = schema
	return s, nil
}

// Do executes a query against the schema
func (s *Schema) Do(params graphql.Params) *graphql.Result {
	params.Schema = s.schema
	return graphql.Do(params)
}
