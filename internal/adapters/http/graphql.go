package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	neighborhoodType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Neighborhood",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"name":   &graphql.Field{Type: graphql.String},
			"center": &graphql.Field{Type: geoPointType},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NeighborhoodStats",
		Fields: graphql.Fields{
			"neighborhood_id":       &graphql.Field{Type: graphql.String},
			"entry_count":           &graphql.Field{Type: graphql.Int},
			"avg_rent":              &graphql.Field{Type: graphql.Float},
			"min_rent":              &graphql.Field{Type: graphql.Float},
			"max_rent":              &graphql.Field{Type: graphql.Float},
			"avg_area_sqm":          &graphql.Field{Type: graphql.Float},
			"avg_price_per_sqm":     &graphql.Field{Type: graphql.Float},
			"fair_price_per_sqm":    &graphql.Field{Type: graphql.Float},
			"unfairness_percentage": &graphql.Field{Type: graphql.Float},
			"band":                  &graphql.Field{Type: graphql.String},
		},
	})

	distributionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distribution",
		Fields: graphql.Fields{
			"count":   &graphql.Field{Type: graphql.Int},
			"mean":    &graphql.Field{Type: graphql.Float},
			"median":  &graphql.Field{Type: graphql.Float},
			"std_dev": &graphql.Field{Type: graphql.Float},
			"min":     &graphql.Field{Type: graphql.Float},
			"max":     &graphql.Field{Type: graphql.Float},
			"mode":    &graphql.Field{Type: graphql.Float},
		},
	})

	observationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Observation",
		Fields: graphql.Fields{
			"category":        &graphql.Field{Type: graphql.String},
			"neighborhood_id": &graphql.Field{Type: graphql.String},
			"coordinates":     &graphql.Field{Type: geoPointType},
			"monthly_rent":    &graphql.Field{Type: graphql.Float},
			"area_sqm":        &graphql.Field{Type: graphql.Float},
			"rooms":           &graphql.Field{Type: graphql.Float},
			"year_built":      &graphql.Field{Type: graphql.Int},
			"price_per_sqm":   &graphql.Field{Type: graphql.Float},
			"date_entered":    &graphql.Field{Type: graphql.String},
		},
	})

	categoryArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"neighborhoods": &graphql.Field{
				Type:        graphql.NewList(neighborhoodType),
				Description: "All neighborhoods in load order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Neighborhoods.List(), nil
				},
			},
			"resolve": &graphql.Field{
				Type:        neighborhoodType,
				Description: "Neighborhood containing a coordinate, null when outside all",
				Args: graphql.FieldConfigArgument{
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lng := p.Args["lng"].(float64)
					lat := p.Args["lat"].(float64)
					id, ok := deps.Neighborhoods.Resolve(lng, lat)
					if !ok {
						return nil, nil
					}
					sum := domain.NeighborhoodSummary{ID: id}
					if n, ok := deps.Neighborhoods.Get(id); ok {
						sum.Name = n.Name
					}
					if c, ok := deps.Neighborhoods.Center(id); ok {
						sum.Center = &c
					}
					return sum, nil
				},
			},
			"stats": &graphql.Field{
				Type:        graphql.NewList(statsType),
				Description: "Merged statistics per neighborhood for a dwelling category",
				Args:        graphql.FieldConfigArgument{"category": categoryArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, err := domain.ParseCategory(p.Args["category"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Stats.SortedStats(p.Context, category)
				},
			},
			"distribution": &graphql.Field{
				Type:        distributionType,
				Description: "Price per sqm distribution of a neighborhood",
				Args: graphql.FieldConfigArgument{
					"category": categoryArg,
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, err := domain.ParseCategory(p.Args["category"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Stats.Distribution(p.Context, category, p.Args["id"].(string))
				},
			},
			"latestObservation": &graphql.Field{
				Type:        observationType,
				Description: "Most recently added user observation",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := deps.Observations.Latest(p.Context)
					if err != nil || o == nil {
						return nil, err
					}
					return map[string]interface{}{
						"category":        string(o.Category),
						"neighborhood_id": o.NeighborhoodID,
						"coordinates":     o.Coordinates,
						"monthly_rent":    o.MonthlyRent,
						"area_sqm":        o.AreaSqm,
						"rooms":           o.Rooms,
						"year_built":      o.YearBuilt,
						"price_per_sqm":   o.PricePerSqm,
						"date_entered":    o.DateEntered.Format(time.RFC3339),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
