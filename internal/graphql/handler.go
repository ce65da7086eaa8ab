package graphql

import (
	"log/slog"
	"net/http"

	"hookboard/internal/storage"

	"github.com/graphql-go/handler"
)

// NewHandler serves the dashboard's read-only schema at /graphql. Queries
// arrive as GET query strings or POST bodies; browsers asking for HTML get
// the GraphiQL explorer. Every other method is refused since the schema
// has no mutations.
func NewHandler(store storage.Storage, logger *slog.Logger) (http.Handler, error) {
	schema, err := NewSchema(store, logger)
	if err != nil {
		return nil, err
	}

	gql := handler.New(&handler.Config{
		Schema:   &schema.schema,
		Pretty:   true,
		GraphiQL: true,
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodPost:
			gql.ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}), nil
}
